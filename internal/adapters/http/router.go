package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kirillkom/legal-dossier/internal/config"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
	"github.com/kirillkom/legal-dossier/internal/observability/metrics"
)

const (
	serviceName          = "api"
	maxJSONBodyBytes     = 1 << 20
	multipartMemoryBytes = 32 << 20
)

// Services groups the inbound ports served over HTTP. Cloud may be nil when the backup provider
// needs no interactive session.
type Services struct {
	Documents  ports.DocumentService
	Cases      ports.CaseService
	Sync       ports.CaseSyncService
	CauseLists ports.CauseListImporter
	Backup     ports.BackupService
	Settings   ports.SettingsService
	Cloud      ports.CloudSession
	Indexer    ports.DirectoryIndexer
	Assistant  ports.AssistantService
}

type Router struct {
	svc            Services
	maxUploadBytes int64
	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
	backpressure   time.Duration
	metrics        *metrics.HTTPServerMetrics
	now            func() time.Time
}

func NewRouter(cfg config.Config, svc Services) *Router {
	return &Router{
		svc:            svc,
		maxUploadBytes: cfg.MaxUploadBytes,
		rateLimitRPS:   cfg.APIRateLimitRPS,
		rateLimitBurst: cfg.APIRateLimitBurst,
		maxInFlight:    cfg.APIMaxInFlight,
		backpressure:   cfg.APIBackpressureWait,
		now:            time.Now,
	}
}

// WithMetrics exposes /metrics and records request metrics on m.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, routed(h))
	}
	handle("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		handle("GET /metrics", rt.metrics.Handler().ServeHTTP)
	}

	handle("POST /v1/documents", rt.uploadDocuments)
	handle("GET /v1/documents", rt.listDocuments)
	handle("GET /v1/documents/stats", rt.documentStats)
	handle("GET /v1/documents/{id}", rt.getDocument)
	handle("DELETE /v1/documents/{id}", rt.deleteDocument)
	handle("POST /v1/documents/{id}/resubmit", rt.resubmitDocument)

	handle("POST /v1/cases", rt.createCase)
	handle("GET /v1/cases", rt.listCases)
	handle("GET /v1/cases/export.xlsx", rt.exportRegister)
	handle("GET /v1/cases/{id}", rt.getCase)
	handle("PUT /v1/cases/{id}", rt.updateCase)
	handle("GET /v1/cases/{id}/hearings", rt.caseHearings)
	handle("GET /v1/cases/{id}/documents", rt.caseDocuments)
	handle("POST /v1/cases/{id}/sync", rt.previewSync)
	handle("POST /v1/cases/{id}/sync/confirm", rt.confirmSync)

	handle("POST /v1/causelists", rt.importCauseList)
	handle("GET /v1/hearings/{id}/ics", rt.hearingCalendar)

	handle("GET /v1/settings", rt.getSettings)
	handle("PUT /v1/settings", rt.updateSettings)
	handle("GET /v1/credentials/ai", rt.credentialStatus)
	handle("PUT /v1/credentials/ai", rt.configureCredential)
	handle("DELETE /v1/credentials/ai", rt.clearCredential)

	handle("GET /v1/cloud/session", rt.cloudSessionStatus)
	handle("POST /v1/cloud/session", rt.connectCloud)
	handle("DELETE /v1/cloud/session", rt.disconnectCloud)
	handle("POST /v1/backup/push", rt.pushBackup)
	handle("POST /v1/backup/pull", rt.pullBackup)

	handle("POST /v1/index/scan", rt.scanDirectory)
	handle("POST /v1/index/import", rt.importFiles)

	handle("POST /v1/assistant/chat", rt.assistantChat)
	handle("POST /v1/research", rt.research)

	handle("GET /v1/tools/limitation", rt.limitation)
	handle("GET /v1/tools/court-fee", rt.courtFee)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressure)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("http.handler_error",
			"request_id", requestIDFromContext(r.Context()),
			"route", r.Pattern,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

// decodeJSON reads a bounded JSON body into dst and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return false
		}
		writeBadRequest(w, "invalid json: "+err.Error())
		return false
	}
	return true
}
