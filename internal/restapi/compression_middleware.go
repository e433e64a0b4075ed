package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, worth compressing. A single
	// vehicle render stays below it; a busy route does not.
	MinSize int
	// Level is the gzip level, 1-9.
	Level int
	// ContentTypes limits compression to these media types.
	ContentTypes []string
}

func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:      1024,
		Level:        6,
		ContentTypes: []string{"application/json", "application/geo+json", "text/html"},
	}
}

// NewCompressionMiddleware gzips JSON and debug page responses for clients
// that accept it. An invalid config falls back to gzhttp's defaults.
func NewCompressionMiddleware(config CompressionConfig) func(http.Handler) http.Handler {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(config.MinSize),
		gzhttp.CompressionLevel(config.Level),
		gzhttp.ContentTypes(config.ContentTypes),
	)
	if err != nil {
		return func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) }
	}
	return func(next http.Handler) http.Handler { return wrapper(next) }
}

func CompressionMiddleware(next http.Handler) http.Handler {
	return NewCompressionMiddleware(DefaultCompressionConfig())(next)
}
