package middleware

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/drstein77/shophub/internal/compress"
)

type archiveTypeKey struct{}

// ArchiveTypeMiddleware reads the archiveType query parameter into the
// request context. Unknown or missing values fall back to zip.
func ArchiveTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		archiveType := r.URL.Query().Get("archiveType")
		if archiveType != compress.Tar && archiveType != compress.Zip {
			archiveType = compress.Zip // Default value
		}

		ctx := context.WithValue(r.Context(), archiveTypeKey{}, archiveType)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ArchiveType returns the archive type chosen by ArchiveTypeMiddleware.
func ArchiveType(ctx context.Context) string {
	if v, ok := ctx.Value(archiveTypeKey{}).(string); ok {
		return v
	}
	return compress.Zip
}

var gzipPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

type gzipResponseWriter struct {
	http.ResponseWriter
	zw *gzip.Writer
}

func (g *gzipResponseWriter) WriteHeader(status int) {
	g.Header().Del("Content-Length")
	g.ResponseWriter.WriteHeader(status)
}

func (g *gzipResponseWriter) Write(p []byte) (int, error) {
	return g.zw.Write(p)
}

// CompressResponseMiddleware gzips the response when the client accepts it.
func CompressResponseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		zw := gzipPool.Get().(*gzip.Writer)
		zw.Reset(w)
		defer func() {
			zw.Close()
			gzipPool.Put(zw)
		}()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, zw: zw}, r)
	})
}
