// Package webui serves the non-production debug pages.
package webui

import (
	"net/http"

	"github.com/YaoxuanLiu37/transitpapers/internal/app"
)

// WebUI holds dependencies for the debug pages.
type WebUI struct {
	*app.Application
}

// NewWebUI creates the debug UI for the given application.
func NewWebUI(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}

// SetRoutes registers the debug endpoints on the mux.
func (webUI *WebUI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug", webUI.debugIndexHandler)
}
