package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestArchiveTypeMiddleware(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "", want: "zip"},
		{query: "?archiveType=tar", want: "tar"},
		{query: "?archiveType=zip", want: "zip"},
		{query: "?archiveType=rar", want: "zip"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got string
			h := ArchiveTypeMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ArchiveType(r.Context())
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/export"+tt.query, nil))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompressResponseMiddleware(t *testing.T) {
	payload := strings.Repeat(`{"id":1,"title":"backpack"}`, 50)
	h := CompressResponseMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, payload)
	}))

	t.Run("gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, payload, string(body))
	})

	t.Run("plain", func(t *testing.T) {
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, payload, rec.Body.String())
	})
}

type recordingLog struct {
	msgs   []string
	fields [][]zap.Field
}

func (l *recordingLog) Info(msg string, fields ...zap.Field) {
	l.msgs = append(l.msgs, msg)
	l.fields = append(l.fields, fields)
}

func TestRequestLogger(t *testing.T) {
	log := &recordingLog{}
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v0/checkout", nil))

	require.Equal(t, []string{"request"}, log.msgs)
	var status int64
	for _, f := range log.fields[0] {
		if f.Key == "status" {
			status = f.Integer
		}
	}
	assert.Equal(t, int64(http.StatusTeapot), status)
}
