package motors

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Prefix is where NewRouter expects to be mounted.
const Prefix = "/api/motors"

// NewRouter serves GET /status below Prefix. Mount it with
// http.StripPrefix(Prefix, ...).
func NewRouter(src SnapshotSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/status", NewStatusHandler(src))
	return r
}
