package server

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// ResponseMeta carries request tracing fields alongside every wrapped
// answer so clients can correlate slow answers with pipeline timings.
type ResponseMeta struct {
	RequestID string `json:"request_id"`
	Path      string `json:"path"`
	LatencyMS int64  `json:"latency_ms"`
	Timestamp string `json:"timestamp"`
}

// WrappedResponse is the envelope for successful API responses.
type WrappedResponse struct {
	Data interface{}  `json:"data"`
	Meta ResponseMeta `json:"meta"`
}

// responseWrapper buffers the handler's body so the middleware can
// decide whether to envelope it.
type responseWrapper struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	wroteBody  bool
}

func newResponseWrapper(w http.ResponseWriter) *responseWrapper {
	return &responseWrapper{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
}

func (rw *responseWrapper) Write(b []byte) (int, error) {
	rw.wroteBody = true
	return rw.body.Write(b)
}

// wrapsPath reports whether responses on path get the data/meta
// envelope. Probe endpoints stay bare so load balancers and scripts
// can read them directly.
func wrapsPath(path string) bool {
	if !strings.HasPrefix(path, "/v1/") {
		return false
	}
	return path != "/v1/health" && path != "/v1/version"
}

// ResponseWrapperMiddleware wraps successful JSON responses in a
// data/meta envelope. Errors and non-JSON bodies pass through
// untouched so their status codes and shapes are preserved.
func ResponseWrapperMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !wrapsPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		requestID := requestIDFor(r)

		rw := newResponseWrapper(w)
		next.ServeHTTP(rw, r)

		if !rw.wroteBody || rw.statusCode >= 400 {
			w.WriteHeader(rw.statusCode)
			w.Write(rw.body.Bytes())
			return
		}

		var data interface{}
		if err := json.Unmarshal(rw.body.Bytes(), &data); err != nil {
			w.WriteHeader(rw.statusCode)
			w.Write(rw.body.Bytes())
			return
		}

		wrapped := WrappedResponse{
			Data: data,
			Meta: ResponseMeta{
				RequestID: requestID,
				Path:      r.URL.Path,
				LatencyMS: time.Since(start).Milliseconds(),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-ID", requestID)
		w.WriteHeader(rw.statusCode)
		json.NewEncoder(w).Encode(wrapped)
	})
}

// requestIDFor reuses the caller's X-Request-ID when the gateway in
// front of the API already assigned one, otherwise generates a fresh ID.
func requestIDFor(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" {
		return id
	}
	return GenerateRequestID()
}

// GenerateRequestID generates a short unique request ID.
func GenerateRequestID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}
