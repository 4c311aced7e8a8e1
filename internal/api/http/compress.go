package http

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// streamPath is served uncompressed so events are not buffered
const streamPath = "/notifications"

// Compress gzips responses for clients that accept it
func Compress(next http.Handler) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(1024),
		gzhttp.ExceptContentTypes([]string{"text/event-stream"}),
	)
	if err != nil {
		return nil, err
	}
	gz := wrap(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == streamPath {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	}), nil
}
