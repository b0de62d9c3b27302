package query

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases and trims",
			in:   "  How Do I Restart?  ",
			want: "how do i restart?",
		},
		{
			name: "collapses whitespace",
			in:   "how   do\tI restart",
			want: "how do i restart",
		},
		{
			name: "wordpress site collapses to site",
			in:   "how do I create a WordPress site",
			want: "how do i create a site",
		},
		{
			name: "wp instance collapses to site",
			in:   "delete my wp instance",
			want: "delete my site",
		},
		{
			name: "standalone wordpress removed",
			in:   "install wordpress plugins",
			want: "install plugins",
		},
		{
			name: "website becomes site",
			in:   "my website is down",
			want: "my site is down",
		},
		{
			name: "payment maps to billing payment",
			in:   "update my payment method",
			want: "update my billing payment method",
		},
		{
			name: "account maps to account billing",
			in:   "close my account",
			want: "close my account billing",
		},
		{
			name: "setup maps to create configure",
			in:   "setup SSL",
			want: "create configure ssl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeRewriteOrder(t *testing.T) {
	// The compound rewrite must win over the standalone removal.
	got := Normalize("wordpress website backup")
	if got != "site backup" {
		t.Fatalf("Normalize() = %q, want %q", got, "site backup")
	}
}

func TestNormalizeEmptyResultFallsBack(t *testing.T) {
	// A question made only of removed tokens falls back to the original.
	got := Normalize("WordPress")
	if got != "WordPress" {
		t.Fatalf("Normalize() = %q, want original question back", got)
	}
}
