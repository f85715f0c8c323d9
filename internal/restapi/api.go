// Package restapi exposes the paper search service over HTTP.
package restapi

import (
	"net/http"

	"github.com/YaoxuanLiu37/transitpapers/internal/app"
	"github.com/YaoxuanLiu37/transitpapers/internal/cache"
	"github.com/YaoxuanLiu37/transitpapers/internal/papers"
)

// RestAPI holds handler dependencies on top of the shared application state.
type RestAPI struct {
	*app.Application
	ResponseCache *cache.Cache[[]papers.PaperItem]
}

// NewRestAPI creates the API surface for the given application.
func NewRestAPI(application *app.Application, responseCache *cache.Cache[[]papers.PaperItem]) *RestAPI {
	return &RestAPI{Application: application, ResponseCache: responseCache}
}

// SetRoutes registers every endpoint on the mux.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", api.healthHandler)
	mux.HandleFunc("GET /papers/recent", api.recentPapersHandler)
	mux.HandleFunc("GET /papers/author/{name}", api.papersByAuthorHandler)
	mux.HandleFunc("GET /papers/keyword/{keyword}", api.papersByKeywordHandler)
	mux.HandleFunc("GET /papers/search", api.searchPapersHandler)
	mux.HandleFunc("GET /papers/{id}", api.paperByIDHandler)
}
