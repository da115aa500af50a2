package httpadapter

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// routeSubjects maps a matched pattern to the log attribute carrying its {id} path value.
var routeSubjects = []struct {
	prefix string
	attr   string
}{
	{prefix: "/v1/documents/{id}", attr: "document_id"},
	{prefix: "/v1/cases/{id}", attr: "case_id"},
	{prefix: "/v1/hearings/{id}", attr: "hearing_id"},
}

// requestInfo is filled in as the request travels inward so the access log, which only sees
// the outer request, can report what the mux matched.
type requestInfo struct {
	id        string
	route     string
	subject   string
	subjectID string
}

type requestInfoContextKey struct{}

func requestInfoFromContext(ctx context.Context) *requestInfo {
	if ctx == nil {
		return nil
	}
	info, _ := ctx.Value(requestInfoContextKey{}).(*requestInfo)
	return info
}

func requestIDFromContext(ctx context.Context) string {
	if info := requestInfoFromContext(ctx); info != nil {
		return info.id
	}
	return ""
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestInfoContextKey{}, &requestInfo{id: requestID})
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// routed records the matched pattern and the dossier entity it addresses.
func routed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if info := requestInfoFromContext(r.Context()); info != nil {
			info.route = r.Pattern
			for _, s := range routeSubjects {
				if strings.Contains(r.Pattern, s.prefix) {
					info.subject, info.subjectID = s.attr, r.PathValue("id")
					break
				}
			}
		}
		h(w, r)
	}
}

func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		remoteAddr := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			remoteAddr = host
		}

		route := "unmatched"
		attrs := []any{"request_id", requestIDFromContext(r.Context())}
		if info := requestInfoFromContext(r.Context()); info != nil {
			if info.route != "" {
				route = info.route
			}
			if info.subject != "" {
				attrs = append(attrs, info.subject, info.subjectID)
			}
		}
		attrs = append(attrs,
			"route", route,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
			"bytes", recorder.bytesWritten,
			"remote_addr", remoteAddr,
		)

		switch {
		case recorder.statusCode >= 500:
			slog.Error("http.request", attrs...)
		case recorder.statusCode >= 400:
			slog.Warn("http.request", attrs...)
		default:
			slog.Info("http.request", attrs...)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
