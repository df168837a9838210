package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/csvcell/internal/logging"
)

// renderFragment writes an HTML fragment for HTMX requests.
func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render fragment", "path", r.URL.Path, "error", err)
	}
}
