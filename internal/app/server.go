package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Server exposes the comparison engine over HTTP.
type Server struct {
	cfg Config
	mux *http.ServeMux
}

// errMissingPart marks client errors in the multipart body.
var errMissingPart = errors.New("missing upload")

// NewServer returns a Server for cfg.
func NewServer(cfg Config) *Server {
	s := &Server{cfg: cfg, mux: http.NewServeMux()}
	s.mux.HandleFunc("/validate-schedules", s.handleValidate)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := newHTTPServer(s.cfg, s)
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Str("version", BuildVersion).Msg("schedule validator listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentBuild())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := log.With().Str("request_id", uuid.NewString()).Logger()
	ctx := logger.WithContext(r.Context())

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	csv, uploads, err := s.readUploads(r.MultipartForm)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errMissingPart) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	report, err := NewEngine(s.cfg).Run(ctx, csv, uploads)
	if err != nil {
		logger.Warn().Err(err).Msg("validation failed")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	logger.Info().
		Int("total", report.TotalClasses).
		Int("matched", report.MatchedClasses).
		Int("discrepancies", len(report.Discrepancies)).
		Dur("elapsed", time.Since(start)).
		Msg("schedules compared")
	writeJSON(w, http.StatusOK, report)
}

// readUploads pulls the CSV and the per-site documents out of form. The CSV
// is required, as is at least one site document.
func (s *Server) readUploads(form *multipart.Form) ([]byte, []Upload, error) {
	csv, ok, err := formBytes(form, s.cfg.CSVField)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: CSV file is required (field %q)", errMissingPart, s.cfg.CSVField)
	}
	var uploads []Upload
	for _, site := range s.cfg.Sites {
		data, ok, err := formBytes(form, site.Field)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		uploads = append(uploads, Upload{Name: site.Field, Location: site.Location, Data: data})
	}
	if len(uploads) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one schedule document is required", errMissingPart)
	}
	return csv, uploads, nil
}

// formBytes returns the content of the file part named field, falling back to
// a plain form value of the same name.
func formBytes(form *multipart.Form, field string) ([]byte, bool, error) {
	if fhs := form.File[field]; len(fhs) > 0 {
		f, err := fhs[0].Open()
		if err != nil {
			return nil, false, fmt.Errorf("open %s: %w", field, err)
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return nil, false, fmt.Errorf("read %s: %w", field, err)
		}
		return b, true, nil
	}
	if vals := form.Value[field]; len(vals) > 0 && vals[0] != "" {
		return []byte(vals[0]), true, nil
	}
	return nil, false, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
