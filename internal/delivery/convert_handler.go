package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/plitvinphd/azurepdf2png/internal/domain"
	"github.com/plitvinphd/azurepdf2png/internal/fetch"
	"github.com/plitvinphd/azurepdf2png/internal/pdf"
	"github.com/plitvinphd/azurepdf2png/internal/ports"
)

const maxRequestBody = 64 << 10

type ConvertHandler struct {
	convertService ports.ConversionService
	log            *logger.ZapLogger
	maxDPI         int
}

func NewConvertHandler(convertService ports.ConversionService, log *logger.ZapLogger, maxDPI int) *ConvertHandler {
	return &ConvertHandler{
		convertService: convertService,
		log:            log,
		maxDPI:         maxDPI,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// POST /convert-pdf
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid convert request", Error: err})
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	resp, err := h.convertService.Convert(r.Context(), req)
	if err != nil {
		stage := domain.StageOf(err)
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: fmt.Sprintf("conversion failed at %s stage, url=%s", stage, req.SourceURL),
			Error:   err,
		})
		writeError(w, statusFor(err), err.Error(), string(stage))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseRequest принимает JSON {"url","dpi"} или те же поля в query/form.
func (h *ConvertHandler) parseRequest(r *http.Request) (ports.ConversionRequest, error) {
	var req ports.ConversionRequest

	q := r.URL.Query()
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("invalid form: %w", err)
		}
		q = r.Form
	} else if err := decodeJSONBody(r, &req); err != nil {
		return req, err
	}

	if req.SourceURL == "" {
		req.SourceURL = q.Get("url")
	}
	if req.DPI == 0 && q.Get("dpi") != "" {
		dpi, err := strconv.Atoi(q.Get("dpi"))
		if err != nil || dpi <= 0 {
			return req, fmt.Errorf("invalid dpi %q", q.Get("dpi"))
		}
		req.DPI = dpi
	}

	if req.SourceURL == "" {
		return req, fmt.Errorf("missing url")
	}
	if err := fetch.ValidateURL(req.SourceURL); err != nil {
		return req, err
	}
	if h.maxDPI > 0 && req.DPI > h.maxDPI {
		return req, fmt.Errorf("dpi %d exceeds maximum %d", req.DPI, h.maxDPI)
	}

	return req, nil
}

func decodeJSONBody(r *http.Request, req *ports.ConversionRequest) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}

	var in struct {
		URL string `json:"url"`
		DPI *int   `json:"dpi"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}

	req.SourceURL = in.URL
	if in.DPI != nil {
		if *in.DPI <= 0 {
			return fmt.Errorf("dpi must be positive")
		}
		req.DPI = *in.DPI
	}
	return nil
}

func statusFor(err error) int {
	switch domain.StageOf(err) {
	case domain.StageFetch:
		if errors.Is(err, fetch.ErrBadStatus) || errors.Is(err, fetch.ErrNotPDF) || errors.Is(err, fetch.ErrTooLarge) {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case domain.StageRasterize:
		if errors.Is(err, pdf.ErrTooManyPages) {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	case domain.StageUpload:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, stage string) {
	writeJSON(w, status, errorResponse{Error: msg, Stage: stage})
}
