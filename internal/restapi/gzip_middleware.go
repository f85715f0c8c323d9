package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// GzipMiddleware transparently compresses responses for clients that
// accept gzip encoding.
func GzipMiddleware(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
