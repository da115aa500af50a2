package httpadapter

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

func (rt *Router) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	files, ok := rt.multipartFiles(w, r)
	if !ok {
		return
	}

	docs := make([]domain.Document, 0, len(files))
	for _, fh := range files {
		doc, err := rt.uploadOne(r, fh)
		if err != nil {
			writeError(w, r, err)
			return
		}
		docs = append(docs, *doc)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"documents": docs})
}

func (rt *Router) uploadOne(r *http.Request, fh *multipart.FileHeader) (*domain.Document, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open upload", err)
	}
	defer file.Close()
	return rt.svc.Documents.Upload(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), file)
}

// multipartFiles parses a bounded multipart body and returns every "file" part.
func (rt *Router) multipartFiles(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, bool) {
	if rt.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds size limit"})
			return nil, false
		}
		writeBadRequest(w, "multipart field 'file' is required")
		return nil, false
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeBadRequest(w, "multipart field 'file' is required")
		return nil, false
	}
	return files, true
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.svc.Documents.List(r.Context(), r.URL.Query().Get("case_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) documentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.svc.Documents.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.svc.Documents.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.svc.Documents.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) resubmitDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.svc.Documents.Resubmit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) importCauseList(w http.ResponseWriter, r *http.Request) {
	files, ok := rt.multipartFiles(w, r)
	if !ok {
		return
	}
	fh := files[0]
	file, err := fh.Open()
	if err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "open upload", err))
		return
	}
	defer file.Close()

	result, err := rt.svc.CauseLists.Import(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
