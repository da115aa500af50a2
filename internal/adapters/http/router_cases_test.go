package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/legal-dossier/internal/config"
	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

func TestCreateCaseReturns201(t *testing.T) {
	svc := newTestServices()
	cases := &casesFake{}
	svc.Cases = cases
	handler := NewRouter(config.Config{}, svc).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/cases", jsonBody(t, map[string]any{
		"case_number": "CS 1-2024",
		"court_name":  "High Court of Delhi",
		"is_urgent":   true,
	}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if cases.created.CaseNumber != "CS 1-2024" || !cases.created.IsUrgent {
		t.Fatalf("unexpected case passed to service %+v", cases.created)
	}
}

func TestCreateCaseRejectsUnknownFields(t *testing.T) {
	handler := newTestHandler(config.Config{})
	req := httptest.NewRequest(http.MethodPost, "/v1/cases", strings.NewReader(`{"case_no":"x"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestDuplicateCaseReturns409(t *testing.T) {
	svc := newTestServices()
	svc.Cases = &casesFake{err: domain.WrapError(domain.ErrConflict, "create case", errors.New("duplicate"))}
	handler := NewRouter(config.Config{}, svc).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/cases", jsonBody(t, map[string]any{"case_number": "CS 1-2024"}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestSyncPreviewAndConfirm(t *testing.T) {
	svc := newTestServices()
	sync := &syncFake{}
	svc.Sync = sync
	handler := NewRouter(config.Config{}, svc).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/cases/case-1/sync", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var report domain.CaseStatusReport
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		t.Fatalf("decode preview: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/cases/case-1/sync/confirm", jsonBody(t, report))
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if sync.confirmed.Stage != "Arguments" {
		t.Fatalf("confirm did not receive the previewed report: %+v", sync.confirmed)
	}
}

func TestSyncFailureReturns503(t *testing.T) {
	svc := newTestServices()
	svc.Sync = &syncFake{err: domain.WrapError(domain.ErrSync, "lookup", errors.New("upstream"))}
	handler := NewRouter(config.Config{}, svc).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/cases/case-1/sync", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestHearingCalendarIsAnAttachment(t *testing.T) {
	handler := newTestHandler(config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/v1/hearings/h1/ics", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := res.Header().Get("Content-Disposition"); !strings.Contains(cd, "hearing_2024-07-15.ics") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !strings.HasPrefix(res.Body.String(), "BEGIN:VCALENDAR") {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
}

func TestExportRegisterRouteIsNotACaseID(t *testing.T) {
	handler := newTestHandler(config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/v1/cases/export.xlsx", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK || res.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected export response %d %q", res.Code, res.Header().Get("Content-Type"))
	}
	if res.Body.String() != "PK" {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
}

func TestCaseDocumentsRequiresCase(t *testing.T) {
	svc := newTestServices()
	svc.Cases = &casesFake{err: domain.WrapError(domain.ErrCaseNotFound, "get case", errors.New("missing"))}
	handler := NewRouter(config.Config{}, svc).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/cases/missing/documents", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}
