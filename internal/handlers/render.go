package handlers

import (
	"bytes"
	"context"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"rocon-docs-ai/internal/contextutil"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		ghhtml.WithHardWraps(),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// renderMarkdown converts a markdown answer to HTML. On render failure
// the raw markdown is returned, so the caller always has something to
// display.
func renderMarkdown(ctx context.Context, source string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "markdown rendering failed", "error", err)
		return source
	}
	return buf.String()
}
