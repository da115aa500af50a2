package httpadapter

import (
	"net/http"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

type researchRequest struct {
	Query string `json:"query"`
}

func (rt *Router) assistantChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := rt.svc.Assistant.Chat(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) research(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	memo, err := rt.svc.Assistant.Research(r.Context(), req.Query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memo)
}
