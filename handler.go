package sqlbridge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/sqlbridge/db"
)

// NewHandler exposes the gateway over HTTP.
//
//	POST /execute {"sql": "...", "params": [...]}
//	POST /batch   {"queries": [{"sql": "...", "params": [...], "method": "..."}]}
func NewHandler(log *slog.Logger, g *Gateway, opts ...HandlerOption) http.Handler {
	h := &Handler{
		log:          log,
		g:            g,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /execute", h.execute)
	mux.HandleFunc("POST /batch", h.batch)
	return mux
}

// DefaultMaxBodyBytes is the largest request body accepted by default.
const DefaultMaxBodyBytes = 8 << 20

type HandlerOption func(*Handler)

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxBodyBytes = n
	}
}

type Handler struct {
	log          *slog.Logger
	g            *Gateway
	maxBodyBytes int64
}

type ExecuteRequest struct {
	SQL    string     `json:"sql"`
	Params []db.Value `json:"params"`
}

type BatchRequest struct {
	Queries []db.BatchItem `json:"queries"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Index is the position of the failing statement.
	Index *int `json:"index,omitempty"`
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeDecodeError(w, err)
		return
	}
	rows, err := h.g.Execute(r.Context(), req.SQL, req.Params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeDecodeError(w, err)
		return
	}
	outputs, err := h.g.ExecuteBatch(r.Context(), req.Queries)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outputs)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes)).Decode(v)
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		h.writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Code: "request_too_large", Message: err.Error()})
		return
	}
	h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{
		Code:    db.Code(err),
		Message: err.Error(),
	}
	var se *db.StatementError
	if errors.As(err, &se) {
		resp.Index = &se.Index
	}
	status := http.StatusInternalServerError
	switch resp.Code {
	case db.CodeStoreNotInitialized:
		status = http.StatusServiceUnavailable
	case db.CodeStatement:
		status = http.StatusUnprocessableEntity
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("failed to write response", slog.Any("error", err))
	}
}
