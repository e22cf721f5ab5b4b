package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/export"
	"github.com/valislegal/valis/internal/mcp"
)

// maxUploadMemory is the multipart size kept in memory before spilling to disk.
const maxUploadMemory = 32 << 20

// RPCHandler handles JSON-RPC method dispatch.
type RPCHandler interface {
	Handle(ctx context.Context, tenantID, method string, params json.RawMessage) (any, error)
}

// Exporter produces downloadable files.
type Exporter interface {
	Export(ctx context.Context, tenantID, documentID string, format export.Format) (*export.Artifact, error)
}

// Uploader stores uploaded files.
type Uploader interface {
	Upload(ctx context.Context, tenantID string, req document.UploadRequest) ([]*document.Document, error)
}

// Recorder observes request outcomes.
type Recorder interface {
	ObserveRequest(op string, status int, elapsed time.Duration)
}

// Options wires the HTTP server. Auth nil means every request belongs to
// mcp.DefaultTenant. MCP and Metrics are mounted when set.
type Options struct {
	Handler  RPCHandler
	Exporter Exporter
	Uploader Uploader
	Auth     func(http.Handler) http.Handler
	MCP      http.Handler
	Metrics  http.Handler
	Recorder Recorder
	Logger   *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	opts   Options
	logger *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(srv.observe)

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	// the MCP server authenticates each call itself
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		auth := opts.Auth
		if auth == nil {
			auth = StaticTenant(mcp.DefaultTenant)
		}
		r.Use(auth)

		r.Post("/rpc", srv.handleRPC)
		r.Post("/documents/upload", srv.handleUpload)
		r.Get("/documents/{id}/export", srv.handleExport)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

const opUnknownRPC = "rpc:unknown"

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		if errors.Is(err, errParse) {
			WriteError(w, nil, ErrParseCode, "parse error", nil)
			return
		}
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	tenantID, ok := TenantFromContext(r.Context())
	if !ok || tenantID == "" {
		http.Error(w, "missing tenant", http.StatusUnauthorized)
		return
	}
	result, err := s.opts.Handler.Handle(r.Context(), tenantID, req.Method, req.Params)
	// Only methods the handler knows become metric labels.
	if errors.Is(err, mcp.ErrUnknownMethod) {
		setOp(r, opUnknownRPC)
	} else {
		setOp(r, "rpc:"+req.Method)
	}
	if err != nil {
		s.writeRPCError(w, req, err)
		return
	}
	WriteResult(w, req.ID, result)
}

func (s *Server) writeRPCError(w http.ResponseWriter, req Request, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, mcp.ErrUnknownMethod):
		WriteError(w, req.ID, ErrMethodNotFound, err.Error(), nil)
	case errors.Is(err, mcp.ErrInvalidParams):
		WriteError(w, req.ID, ErrInvalidParams, err.Error(), nil)
	default:
		if apiErr := mcp.MapError(err); apiErr != nil {
			WriteError(w, req.ID, ErrApplication, apiErr.Message, apiErr)
			return
		}
		s.logger.Error("rpc failed", "method", req.Method, "error", err)
		WriteError(w, req.ID, ErrInternal, "internal error", nil)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := TenantFromContext(r.Context())
	setOp(r, "export")

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeHTTPError(w, err)
		return
	}

	artifact, err := s.opts.Exporter.Export(r.Context(), tenantID, chi.URLParam(r, "id"), format)
	if err != nil {
		s.writeHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := TenantFromContext(r.Context())
	setOp(r, "upload")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var files []document.File
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				http.Error(w, "unreadable file", http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				http.Error(w, "unreadable file", http.StatusBadRequest)
				return
			}
			files = append(files, document.File{
				Name:     fh.Filename,
				MimeType: fh.Header.Get("Content-Type"),
				Data:     data,
			})
		}
	}
	if len(files) == 0 {
		s.writeHTTPError(w, document.ErrNoFiles)
		return
	}

	req := document.UploadRequest{ProjectID: r.FormValue("project_id"), Files: files}
	if c := strings.TrimSpace(r.FormValue("collection_id")); c != "" {
		req.CollectionID = &c
	}
	docs, err := s.opts.Uploader.Upload(r.Context(), tenantID, req)
	if err != nil {
		s.writeHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, docs)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, err error) {
	apiErr := mcp.MapError(err)
	if apiErr == nil {
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, &mcp.APIError{Code: "INTERNAL", Message: "internal error"})
		return
	}
	writeJSON(w, httpStatus(apiErr), apiErr)
}

func httpStatus(apiErr *mcp.APIError) int {
	switch {
	case strings.HasSuffix(apiErr.Code, "_NOT_FOUND"):
		return http.StatusNotFound
	case apiErr.Code == "READ_ONLY":
		return http.StatusConflict
	case apiErr.Code == "EXPORT_FAILED":
		return http.StatusInternalServerError
	case apiErr.Code == "UNAVAILABLE":
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

type opKey struct{}

// setOp names the operation reported to the Recorder.
func setOp(r *http.Request, op string) {
	if p, ok := r.Context().Value(opKey{}).(*string); ok {
		*p = op
	}
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var op string
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), opKey{}, &op)))
		if op == "" {
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				op = rctx.RoutePattern()
			}
		}
		if op == "" {
			op = "unmatched"
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.opts.Recorder != nil && op != "/metrics" && op != "/health" {
			s.opts.Recorder.ObserveRequest(op, status, time.Since(start))
		}
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "op", op, "status", status,
			"elapsed", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}
