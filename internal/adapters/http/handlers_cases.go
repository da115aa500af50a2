package httpadapter

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) createCase(w http.ResponseWriter, r *http.Request) {
	var c domain.Case
	if !decodeJSON(w, r, &c) {
		return
	}
	created, err := rt.svc.Cases.Create(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) listCases(w http.ResponseWriter, r *http.Request) {
	cases, err := rt.svc.Cases.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": cases})
}

func (rt *Router) getCase(w http.ResponseWriter, r *http.Request) {
	c, err := rt.svc.Cases.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (rt *Router) updateCase(w http.ResponseWriter, r *http.Request) {
	var c domain.Case
	if !decodeJSON(w, r, &c) {
		return
	}
	updated, err := rt.svc.Cases.Update(r.Context(), r.PathValue("id"), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rt *Router) caseHearings(w http.ResponseWriter, r *http.Request) {
	hearings, err := rt.svc.Cases.Hearings(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hearings": hearings})
}

func (rt *Router) caseDocuments(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("id")
	if _, err := rt.svc.Cases.Get(r.Context(), caseID); err != nil {
		writeError(w, r, err)
		return
	}
	docs, err := rt.svc.Documents.List(r.Context(), caseID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) previewSync(w http.ResponseWriter, r *http.Request) {
	report, err := rt.svc.Sync.Preview(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) confirmSync(w http.ResponseWriter, r *http.Request) {
	var report domain.CaseStatusReport
	if !decodeJSON(w, r, &report) {
		return
	}
	merged, err := rt.svc.Sync.Confirm(r.Context(), r.PathValue("id"), report)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

func (rt *Router) hearingCalendar(w http.ResponseWriter, r *http.Request) {
	filename, data, err := rt.svc.Cases.HearingCalendar(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/calendar; charset=utf-8", filename, data)
}

func (rt *Router) exportRegister(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := rt.svc.Cases.ExportRegister(r.Context(), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	writeAttachment(w, xlsxContentType, "case_register_"+rt.now().Format("2006-01-02")+".xlsx", buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
