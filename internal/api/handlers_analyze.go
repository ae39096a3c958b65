package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/agendalink/internal/artifact"
	"github.com/dgallion1/agendalink/internal/docket"
	"github.com/dgallion1/agendalink/internal/parser"
	"github.com/dgallion1/agendalink/internal/report"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errNotPDF      = errors.New("not a pdf filename")
	errEmptyUpload = errors.New("empty upload")
	errTooLarge    = errors.New("upload too large")
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	path, ok := s.receiveUpload(w, r)
	if !ok {
		return
	}
	defer os.Remove(path)

	ctx := artifact.WithRunID(r.Context(), middleware.GetReqID(r.Context()))
	all, err := s.analyzer.Links(ctx, path)
	if err != nil {
		s.processingFailed(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"all_links": all})
}

func (s *Server) handleAnalyzeLinks(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "", "json", "markdown", "html":
	default:
		jsonError(w, fmt.Sprintf("unsupported format: %s", format), http.StatusBadRequest)
		return
	}

	path, ok := s.receiveUpload(w, r)
	if !ok {
		return
	}
	defer os.Remove(path)

	ctx := artifact.WithRunID(r.Context(), middleware.GetReqID(r.Context()))
	list, err := s.analyzer.Docket(ctx, path)
	if err != nil {
		s.processingFailed(w, r, err)
		return
	}

	switch format {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write(report.Markdown(list))
	case "html":
		s.writeHTML(w, r, list)
	default:
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) writeHTML(w http.ResponseWriter, r *http.Request, list *docket.DocketList) {
	body, err := report.HTML(list)
	if err != nil {
		s.processingFailed(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// receiveUpload validates the multipart "file" field and spools it to a temp
// file. On failure it has already written the error response. The caller
// owns removing the returned path.
func (s *Server) receiveUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return "", false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", false
	}
	defer file.Close()

	path, err := spool(file, header.Filename, s.cfg.MaxUploadBytes)
	switch {
	case errors.Is(err, errNotPDF):
		jsonError(w, "Only .pdf files are accepted", http.StatusBadRequest)
		return "", false
	case errors.Is(err, errEmptyUpload):
		jsonError(w, "Empty file upload", http.StatusBadRequest)
		return "", false
	case errors.Is(err, errTooLarge):
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", false
	case err != nil:
		s.log.Error("spool upload failed", "error", err)
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", false
	}
	s.log.Debug("upload received", "filename", sanitizeFilename(header.Filename), "path", path)
	return path, true
}

// spool copies an upload to a temp file, enforcing the extension, emptiness
// and size rules. No file is left behind on error.
func spool(src io.Reader, filename string, maxBytes int64) (string, error) {
	if !parser.IsPDFFilename(filename) {
		return "", errNotPDF
	}

	tmp, err := os.CreateTemp("", "agendalink-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(tmp, io.LimitReader(src, maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	switch {
	case err != nil:
		err = fmt.Errorf("write temp file: %w", err)
	case n == 0:
		err = errEmptyUpload
	case n > maxBytes:
		err = errTooLarge
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (s *Server) processingFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("processing failed",
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)
	jsonError(w, "Processing failed: "+err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"detail": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
