package web

import (
	"errors"
	"fmt"
	"github.com/PedroLeon917/cybdates/common/schedule"
	"github.com/PedroLeon917/cybdates/common/sheet"
	"github.com/PedroLeon917/cybdates/common/store"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const HeaderIngestionId = "X-Ingestion-Id"

var queryValidator = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Departure string `json:"departure,omitempty"`
	Arrival   string `json:"arrival,omitempty"`
}

type routesResponse struct {
	Count  int              `json:"count"`
	Routes []schedule.Route `json:"routes"`
}

type routeQuery struct {
	Departure string `query:"departure" validate:"required"`
	Arrival   string `query:"arrival" validate:"required"`
}

type FlightsHandler struct {
	s           store.Store
	parallelism uint
	metrics     *Metrics
	log         *zap.Logger
	now         func() time.Time
}

func NewFlightsHandler(s store.Store, parallelism uint, metrics *Metrics, log *zap.Logger) *FlightsHandler {
	return &FlightsHandler{
		s:           s,
		parallelism: parallelism,
		metrics:     metrics,
		log:         log,
		now:         time.Now,
	}
}

func (h *FlightsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *FlightsHandler) Upload(c echo.Context) error {
	start := h.now()
	defer func() {
		h.metrics.IngestionDuration.Observe(h.now().Sub(start).Seconds())
	}()

	r, filename, contentType, err := uploadedDocument(c)
	if err != nil {
		h.metrics.Ingestions.WithLabelValues("rejected").Inc()
		return err
	}
	defer r.Close()

	rows, err := sheet.Read(r, sheet.DetectFormat(filename, contentType))
	if err != nil || len(rows) < 1 {
		if err == nil || errors.Is(err, sheet.ErrEmpty) {
			h.metrics.Ingestions.WithLabelValues("empty").Inc()
			return NewHTTPError(http.StatusBadRequest, WithMessage("Uploaded file is empty or could not be read"))
		}

		h.metrics.Ingestions.WithLabelValues("failed").Inc()
		return NewHTTPError(http.StatusInternalServerError, WithMessage("Error"), WithCause(err), WithUnmaskedCause())
	}

	idx, tbl, err := schedule.Ingest(c.Request().Context(), rows, h.parallelism)
	if err != nil {
		h.metrics.Ingestions.WithLabelValues("failed").Inc()
		if errors.Is(err, schedule.ErrHeaderNotFound) {
			return NewHTTPError(http.StatusInternalServerError, WithMessage("Error: Header row not found"), WithCause(err))
		}

		return NewHTTPError(http.StatusInternalServerError, WithMessage("Error"), WithCause(err), WithUnmaskedCause())
	}

	h.metrics.RowsProcessed.Add(float64(tbl.DataRows))
	h.metrics.RowsSkipped.Add(float64(tbl.Skipped))

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}

	doc := idx.Document()
	doc.Metadata = &schedule.Metadata{
		Id:          id,
		CreatedAt:   h.now().UTC(),
		Source:      filename,
		Rows:        tbl.DataRows,
		SkippedRows: tbl.Skipped,
	}

	log := h.log.With(zap.Stringer("ingestionId", id), zap.String("source", filename))
	if err = h.s.Put(c.Request().Context(), doc); err != nil {
		log.Error("failed to store flights", zap.Error(err))
	} else {
		log.Info(
			"stored flights",
			zap.Int("routes", len(doc.Flights)),
			zap.Int("rows", tbl.DataRows),
			zap.Int("skippedRows", tbl.Skipped),
		)
	}

	h.metrics.Ingestions.WithLabelValues("ok").Inc()
	c.Response().Header().Set(HeaderIngestionId, id.String())
	return c.JSON(http.StatusOK, doc)
}

func uploadedDocument(c echo.Context) (io.ReadCloser, string, string, error) {
	req := c.Request()
	contentType := req.Header.Get(echo.HeaderContentType)

	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return req.Body, c.QueryParam("filename"), contentType, nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", "", NewHTTPError(http.StatusBadRequest, WithMessage("Missing file"))
		}

		return nil, "", "", NewHTTPError(http.StatusBadRequest, WithMessage("Invalid multipart form"), WithCause(err))
	}

	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}

	return f, fh.Filename, fh.Header.Get(echo.HeaderContentType), nil
}

func (h *FlightsHandler) UploadMethodNotAllowed(c echo.Context) error {
	return NewHTTPError(http.StatusMethodNotAllowed, WithMessage("Use POST with an Excel file"))
}

func (h *FlightsHandler) Flights(c echo.Context) error {
	doc, err := h.s.Get(c.Request().Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, WithMessage("No flights stored"))
		}

		return NewHTTPError(http.StatusInternalServerError, WithMessage("Failed to read flights from store"), WithCause(err))
	}

	return c.JSON(http.StatusOK, doc)
}

func (h *FlightsHandler) Route(c echo.Context) error {
	var q routeQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return NewHTTPError(http.StatusBadRequest, WithCause(err))
	}

	if err := queryValidator.Struct(q); err != nil {
		h.metrics.RouteQueries.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing required parameters: departure and arrival"})
	}

	idx, err := h.index(c)
	if err != nil {
		h.metrics.RouteQueries.WithLabelValues("failed").Inc()
		h.log.Error("failed to read flights from store", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to retrieve flights data"})
	}

	res, err := idx.FindRoute(q.Departure, q.Arrival)
	if err != nil {
		var notFound *schedule.RouteNotFoundError
		if errors.As(err, &notFound) {
			h.metrics.RouteQueries.WithLabelValues("not_found").Inc()
			return c.JSON(http.StatusNotFound, errorResponse{
				Error:     fmt.Sprintf("No flights found for route %s → %s", q.Departure, q.Arrival),
				Departure: notFound.Departure,
				Arrival:   notFound.Arrival,
			})
		}

		return err
	}

	h.metrics.RouteQueries.WithLabelValues("found").Inc()
	return c.JSON(http.StatusOK, res)
}

func (h *FlightsHandler) Routes(c echo.Context) error {
	idx, err := h.index(c)
	if err != nil {
		h.log.Error("failed to read flights from store", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Failed to read flights from store",
			Message: err.Error(),
		})
	}

	routes := idx.ListRoutes()
	return c.JSON(http.StatusOK, routesResponse{
		Count:  len(routes),
		Routes: routes,
	})
}

func (h *FlightsHandler) Fallback(c echo.Context) error {
	return NewHTTPError(http.StatusMethodNotAllowed, WithMessage("Use POST /upload or GET /flights"))
}

// index loads the stored document. Nothing stored yields an empty index.
func (h *FlightsHandler) index(c echo.Context) (*schedule.Index, error) {
	doc, err := h.s.Get(c.Request().Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return schedule.NewIndex(nil), nil
		}

		return nil, err
	}

	return doc.Index(), nil
}
