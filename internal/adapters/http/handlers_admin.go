package httpadapter

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/legaltools"
)

func (rt *Router) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := rt.svc.Settings.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// updateSettings overlays the request body on the current settings, so partial updates are allowed.
func (rt *Router) updateSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := rt.svc.Settings.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !decodeJSON(w, r, &settings) {
		return
	}
	updated, err := rt.svc.Settings.Update(r.Context(), settings)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rt *Router) credentialStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"configured": rt.svc.Settings.CredentialConfigured(r.Context())})
}

func (rt *Router) configureCredential(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := rt.svc.Settings.ConfigureCredential(r.Context(), req.APIKey); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"configured": true})
}

func (rt *Router) clearCredential(w http.ResponseWriter, r *http.Request) {
	if err := rt.svc.Settings.ClearCredential(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) cloudSessionStatus(w http.ResponseWriter, _ *http.Request) {
	if rt.svc.Cloud == nil {
		writeJSON(w, http.StatusOK, map[string]any{"required": false, "connected": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"required": true, "connected": rt.svc.Cloud.Connected()})
}

func (rt *Router) connectCloud(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Cloud == nil {
		writeBadRequest(w, "the configured backup provider does not use a cloud session")
		return
	}
	var req struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := rt.svc.Cloud.Connect(req.AccessToken, time.Duration(req.ExpiresIn)*time.Second); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": true})
}

func (rt *Router) disconnectCloud(w http.ResponseWriter, _ *http.Request) {
	if rt.svc.Cloud != nil {
		rt.svc.Cloud.Disconnect()
	}
	w.WriteHeader(http.StatusNoContent)
}

type passphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

func (rt *Router) pushBackup(w http.ResponseWriter, r *http.Request) {
	var req passphraseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	receipt, err := rt.svc.Backup.Push(r.Context(), req.Passphrase)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (rt *Router) pullBackup(w http.ResponseWriter, r *http.Request) {
	var req passphraseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	receipt, err := rt.svc.Backup.Pull(r.Context(), req.Passphrase)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (rt *Router) scanDirectory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dir string `json:"dir"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	files, err := rt.svc.Indexer.Scan(r.Context(), req.Dir)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (rt *Router) importFiles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paths []string `json:"paths"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	docs, err := rt.svc.Indexer.Import(r.Context(), req.Paths)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"documents": docs})
}

// limitation lists the rule table when no rule is given.
func (rt *Router) limitation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rule := strings.TrimSpace(q.Get("rule"))
	if rule == "" {
		writeJSON(w, http.StatusOK, map[string]any{"rules": legaltools.LimitationRules})
		return
	}
	result, err := legaltools.CalculateLimitation(strings.TrimSpace(q.Get("cause_date")), rule, rt.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) courtFee(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("amount"))
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount < 0 {
		writeBadRequest(w, "amount must be a non-negative number")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"amount": amount,
		"fee":    legaltools.CalculateCourtFee(amount),
	})
}
