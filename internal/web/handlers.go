package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/sheetmap/internal/core"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status      string             `json:"status"`
	Datasets    int                `json:"datasets"`
	Conversions core.LimiterStatus `json:"conversions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Datasets:    core.DatasetCount(),
		Conversions: s.service.LimiterStatus(),
	})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ListDatasets())
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "dataset")
	ds, ok := core.Get(key)
	if !ok {
		respondError(w, r, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, key))
		return
	}
	writeJSON(w, http.StatusOK, ds.Info())
}

// handleExport renders the JSON array in the request body as a workbook.
//
// Query parameters:
//
//	order  natural or mapping; defaults to mapping when merge is set, else natural
//	links  none (default), all or named
//	link   field to scan for URLs; repeatable, implies links=named
//	merge  unique field of the merge layout, or "default" for the dataset's own
//	width  number of leading columns merged per run (default 1)
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "dataset")

	req, err := parseExportRequest(r.URL.Query(), key)
	if err != nil {
		respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Export(r.Context(), key, body, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeWorkbook(w, res, key)
}

// handleTemplate serves an empty workbook holding only the headers.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "dataset")

	res, err := s.service.Template(r.Context(), key)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeWorkbook(w, res, key+"_template")
}

// handleImport reads an uploaded workbook. The file is taken from the
// multipart field "file", or from the raw body for any other content type.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "dataset")

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	data, err := readUpload(r, s.cfg.Import.MaxFileSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Import(r.Context(), key, bytes.NewReader(data))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("X-Operation-ID", res.OperationID)
	writeJSON(w, http.StatusOK, res)
}

// readUpload returns the workbook bytes of an import request.
func readUpload(r *http.Request, maxSize int64) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errNoFile
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// parseExportRequest reads the export choices from the query string.
func parseExportRequest(q url.Values, key string) (core.ExportRequest, error) {
	var req core.ExportRequest

	switch strings.ToLower(q.Get("order")) {
	case "", "natural":
		req.Order = core.OrderNatural
	case "mapping":
		req.Order = core.OrderMapping
	default:
		return req, badParam("order", "must be natural or mapping, got %q", q.Get("order"))
	}

	req.LinkFields = q["link"]
	switch strings.ToLower(q.Get("links")) {
	case "":
		if len(req.LinkFields) > 0 {
			req.Links = core.LinkNamed
		}
	case "none":
		req.Links = core.LinkNone
	case "all":
		req.Links = core.LinkAll
	case "named":
		req.Links = core.LinkNamed
	default:
		return req, badParam("links", "must be none, all or named, got %q", q.Get("links"))
	}

	unique := q.Get("merge")
	if unique == "" {
		return req, nil
	}

	// Merge layouts count columns from the left of the mapping, so a merged
	// export is laid out in mapping order unless the caller chose otherwise.
	if q.Get("order") == "" {
		req.Order = core.OrderMapping
	}

	if unique == "default" {
		ds, ok := core.Get(key)
		if !ok {
			return req, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, key)
		}
		if ds.Info().Merge == nil {
			return req, badParam("merge", "dataset %s has no default merge layout", key)
		}
		spec := *ds.Info().Merge
		req.Merge = &spec
		return req, nil
	}

	width := 1
	if raw := q.Get("width"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, badParam("width", "must be a positive integer, got %q", raw)
		}
		width = n
	}
	req.Merge = &core.MergeSpec{Unique: unique, Width: width}
	return req, nil
}

func badParam(name, format string, args ...any) error {
	return &core.ConfigurationError{Setting: name, Reason: fmt.Sprintf(format, args...)}
}

// writeWorkbook streams an export result as an attachment.
func writeWorkbook(w http.ResponseWriter, res *core.ExportResult, name string) {
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Operation-ID", res.OperationID)
	w.Header().Set("X-Record-Count", strconv.Itoa(res.Records))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
