package middleware

import (
	"music-api-go/logcolors"
	"music-api-go/stats"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// ResponseRecorder captures the status code and body size of a response
type ResponseRecorder struct {
	http.ResponseWriter
	StatusCode int
	BodySize   int
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (r *ResponseRecorder) WriteHeader(statusCode int) {
	r.StatusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *ResponseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.BodySize += n
	return n, err
}

func getStatusColor(statusCode int) string {
	switch {
	case statusCode >= 500:
		return logcolors.Red
	case statusCode >= 400:
		return "\033[33m"
	case statusCode >= 300:
		return logcolors.Cyan
	case statusCode >= 200:
		return logcolors.Green
	default:
		return logcolors.Reset
	}
}

// LoggingMiddleware logs every request and feeds the stats counters.
// Requests without an X-Request-ID get a fresh one, echoed in the response.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := NewResponseRecorder(w)
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		s := stats.Get()
		s.RecordRequest(r.URL.Path)
		s.RecordStatusCode(rec.StatusCode)
		s.RecordResponseTime(duration)

		color := getStatusColor(rec.StatusCode)
		log.WithFields(log.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.StatusCode,
			"size":       rec.BodySize,
			"duration":   duration.String(),
			"remote":     r.RemoteAddr,
		}).Infof("%s %s %s %s%d%s %s", logcolors.LogHTTP, r.Method, r.URL.Path, color, rec.StatusCode, logcolors.Reset, duration)
	})
}
