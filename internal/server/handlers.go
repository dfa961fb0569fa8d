package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/clipsynth-api/internal/estimate"
	"github.com/maauso/clipsynth-api/internal/storage"
	"github.com/maauso/clipsynth-api/internal/synth"
)

// audioRoute is the path prefix output files are fetched from.
const audioRoute = "/api/audio/"

// defaultMaxDuration bounds caller-supplied targets unless overridden.
const defaultMaxDuration = 300 * time.Second

// Synthesizer builds output files from the clip library.
type Synthesizer interface {
	Synthesize(ctx context.Context, req synth.Request) (*synth.Result, error)
}

// AudioStore opens previously synthesized files.
type AudioStore interface {
	Open(ctx context.Context, name string) (*storage.Object, error)
}

// ClipCatalog describes the loaded clip library.
type ClipCatalog interface {
	Bucketed() bool
	Buckets() []string
	DefaultBucket() string
	Names() map[string][]string
}

// DurationEstimator derives a target duration from request text.
type DurationEstimator interface {
	Duration(text string) time.Duration
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	synth       Synthesizer
	store       AudioStore
	catalog     ClipCatalog
	estimator   DurationEstimator
	validator   *validator.Validate
	logger      *slog.Logger
	maxDuration time.Duration
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithEstimator replaces the text-based duration estimator.
func WithEstimator(e DurationEstimator) HandlerOption {
	return func(h *Handlers) {
		if e != nil {
			h.estimator = e
		}
	}
}

// WithMaxDuration sets the largest target a caller may request.
func WithMaxDuration(d time.Duration) HandlerOption {
	return func(h *Handlers) {
		if d > 0 {
			h.maxDuration = d
		}
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(s Synthesizer, store AudioStore, catalog ClipCatalog, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		synth:       s,
		store:       store,
		catalog:     catalog,
		estimator:   estimate.Default(),
		validator:   validator.New(),
		logger:      logger,
		maxDuration: defaultMaxDuration,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Synthesize handles POST /api/synthesize requests.
func (h *Handlers) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		if req.Text == nil {
			writeError(w, http.StatusBadRequest, "text is required", "VALIDATION_ERROR")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	target, ok := h.target(req)
	if !ok {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("duration must not exceed %g seconds", h.maxDuration.Seconds()),
			"DURATION_TOO_LONG")
		return
	}

	res, err := h.synth.Synthesize(r.Context(), synth.Request{
		Duration: target,
		Bucket:   req.Bucket,
	})
	if err != nil {
		if errors.Is(err, synth.ErrEmptyBucket) {
			h.logger.Warn("no clips for bucket",
				slog.String("bucket", req.Bucket),
			)
			writeError(w, http.StatusNotFound, "audio fail: "+err.Error(), "BUCKET_EMPTY")
			return
		}
		h.logger.Error("synthesis failed",
			slog.String("bucket", req.Bucket),
			slog.Duration("target", target),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "audio fail: "+err.Error(), "SYNTHESIS_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, SynthesizeResponse{
		Success:   true,
		Message:   "success",
		FileURL:   audioRoute + res.Name,
		MirrorURL: res.MirrorURL,
		Duration:  res.Duration.Seconds(),
		Bucket:    res.Bucket,
	})
}

// target picks the synthesis duration for req. Zero leaves the choice to
// the synthesizer. ok is false when the caller asked for too much.
func (h *Handlers) target(req SynthesizeRequest) (d time.Duration, ok bool) {
	switch {
	case req.Duration != nil:
		// Compare in seconds so oversized values cannot overflow Duration.
		sec := *req.Duration
		if sec > h.maxDuration.Seconds() {
			return 0, false
		}
		// Round up so a tiny positive request never collapses to zero.
		d = max(time.Duration(math.Ceil(sec*float64(time.Second))), time.Nanosecond)
	case *req.Text != "":
		d = h.estimator.Duration(*req.Text)
	}
	return d, d <= h.maxDuration
}

// GetAudio handles GET /api/audio/{filename} requests.
func (h *Handlers) GetAudio(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required", "MISSING_FILENAME")
		return
	}

	obj, err := h.store.Open(r.Context(), filename)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidName):
			writeError(w, http.StatusNotFound, "get audio fail: "+err.Error(), "AUDIO_NOT_FOUND")
		default:
			h.logger.Error("failed to open audio",
				slog.String("filename", filename),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "get audio fail: "+err.Error(), "AUDIO_FETCH_FAILED")
		}
		return
	}
	defer func() { _ = obj.Close() }()

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeContent(w, r, obj.Name, obj.ModTime, obj)
}

// ListClips handles GET /api/clips requests.
func (h *Handlers) ListClips(w http.ResponseWriter, r *http.Request) {
	names := h.catalog.Names()

	resp := ClipsResponse{
		Success:       true,
		Bucketed:      h.catalog.Bucketed(),
		DefaultBucket: h.catalog.DefaultBucket(),
	}

	order := h.catalog.Buckets()
	if !resp.Bucketed {
		order = []string{""}
	}
	for _, b := range order {
		files := names[b]
		if files == nil {
			files = []string{}
		}
		resp.Buckets = append(resp.Buckets, BucketClips{Name: b, Files: files})
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}
