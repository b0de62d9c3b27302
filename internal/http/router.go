package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rocon-docs-ai/internal/handlers"
	"rocon-docs-ai/internal/indexer"
	"rocon-docs-ai/internal/rag"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>ROCON Docs Assistant</title>
</head>
<body>
  <h1>ROCON Docs Assistant</h1>
  <p>Documentation Q&amp;A API.</p>
  <ul>
    <li><code>POST /api/chat</code> ask a question</li>
    <li><code>POST /api/search</code> raw retrieval</li>
    <li><code>POST /api/index</code> rebuild the index</li>
    <li><code>GET /api/health</code> health check</li>
  </ul>
</body>
</html>
`

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine   rag.Engine
	Holder   *rag.Holder
	Pipeline *indexer.Pipeline
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.Engine)
	searchHandler := handlers.NewSearchHandler(deps.Engine)
	healthHandler := handlers.NewHealthHandler(deps.Holder)
	indexHandler := handlers.NewIndexHandler(deps.Pipeline)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/search", searchHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodPost, "/index", indexHandler)
	})

	// Serve a minimal landing page at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(indexHTML))
	})

	return r
}
