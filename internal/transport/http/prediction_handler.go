package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"btcoracle/internal/dataprocessing"
	apierrors "btcoracle/internal/errors"
	"btcoracle/internal/middleware"
	"btcoracle/internal/services"
)

// PredictionHandler handles dataset uploads and prediction retrieval
// with RFC 7807 error responses.
type PredictionHandler struct {
	service      PredictionServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	maxBytes     int64
}

// uploadRequest carries the validated form fields of an upload.
type uploadRequest struct {
	UserID string `validate:"required,max=128"`
}

// NewPredictionHandler creates a new prediction handler.
func NewPredictionHandler(service PredictionServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxBytes int64) *PredictionHandler {
	return &PredictionHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "prediction_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
		maxBytes:     maxBytes,
	}
}

// Routes returns the prediction routes.
func (h *PredictionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.Upload)
	r.Get("/latest", h.Latest)
	r.Get("/sample", h.Sample)

	return r
}

// Upload handles POST /api/predictions/upload. It accepts a multipart
// form with a "file" part and a "user_id" field, runs the dataset
// through the pipeline, and returns the derived chart views.
func (h *PredictionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "Request must be multipart/form-data with a file part"))
		return
	}

	req := uploadRequest{UserID: r.FormValue("user_id")}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("user_id", "A non-empty user_id form field is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A file part is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "processing upload",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int("size", len(data)),
		slog.String("user_id", req.UserID),
	)

	up := dataprocessing.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	bundle, err := h.service.ProcessUpload(r.Context(), req.UserID, up)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "upload processing failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, bundle)
}

// Latest handles GET /api/predictions/latest?user_id=...
func (h *PredictionHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("user_id", "The user_id query parameter is required"))
		return
	}

	rec, err := h.service.LatestEstimate(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoPredictionFound) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPredictionNotFound)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, rec)
}

// Sample handles GET /api/predictions/sample. It returns the synthetic
// dataset used before a user has uploaded anything.
func (h *PredictionHandler) Sample(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.SampleBundle())
}
