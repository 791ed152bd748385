package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/desertthunder/rolesplit/internal/spreadsheet"
	"github.com/desertthunder/rolesplit/internal/tasks"
)

// UploadField is the multipart form field carrying the spreadsheet.
const UploadField = "planilha"

// ExportSummary describes one category file in a response.
type ExportSummary struct {
	Category string `json:"category"`
	File     string `json:"file"`
	Records  int    `json:"records"`
	State    string `json:"state"`
	Error    string `json:"error,omitempty"`
}

// ExtractResponse is the body of a processed upload.
type ExtractResponse struct {
	BatchID string          `json:"batch_id"`
	Rows    int             `json:"rows"`
	Exports []ExportSummary `json:"exports"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ExtractHandler accepts a spreadsheet upload and writes the three category files.
//
// Splits are serialized because every run writes the same file names.
type ExtractHandler struct {
	splitter Splitter
	maxBytes int64
	logger   *log.Logger
	mu       sync.Mutex
}

// NewExtractHandler creates an [ExtractHandler]. maxBytes of 0 or less leaves uploads unbounded.
func NewExtractHandler(splitter Splitter, maxBytes int64, logger *log.Logger) *ExtractHandler {
	return &ExtractHandler{splitter: splitter, maxBytes: maxBytes, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *ExtractHandler) Routes() []string {
	return []string{"/extract"}
}

func (h *ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	format, err := spreadsheet.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	data, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	result, err := h.splitter.Run(r.Context(), nil, data, format)
	h.mu.Unlock()

	if result == nil {
		h.logger.Error("error extracting data", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, summarize(result))
}

// readUpload returns the multipart field [UploadField] or, for any other content type, the raw body.
func readUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: empty request body", shared.ErrMissingArgument)
		}
		return data, nil
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: form field %q", shared.ErrMissingArgument, UploadField)
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() != UploadField {
			part.Close()
			continue
		}

		var buf bytes.Buffer
		_, err = io.Copy(&buf, part)
		part.Close()
		if err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

func summarize(result *tasks.SplitResult) ExtractResponse {
	resp := ExtractResponse{
		BatchID: result.BatchID,
		Rows:    result.Rows,
		Exports: make([]ExportSummary, 0, len(result.Exports)),
	}
	for _, res := range result.Exports {
		s := ExportSummary{
			Category: res.Category.String(),
			File:     res.Output,
			Records:  res.Records,
			State:    res.State.String(),
		}
		if res.Err != nil {
			s.Error = res.Err.Error()
		}
		resp.Exports = append(resp.Exports, s)
	}
	return resp
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrDecode), errors.Is(err, shared.ErrMalformedRow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrUnsupportedFormat),
		errors.Is(err, shared.ErrEmptyWorkbook):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HealthHandler reports liveness.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
