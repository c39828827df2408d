package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"github.com/PedroLeon917/cybdates/common/schedule"
	"github.com/PedroLeon917/cybdates/common/store"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testSchedule = "Summer schedule\n" +
	"Flight No.,Eff From,Eff To,Frequency,,,,Dep,,Arr\n" +
	"LH400,2024-01-01,2024-01-07,11111__,,,,fra,,jfk\n" +
	"LH401,2024-01-06,2024-01-07,1234567,,,,jfk,,fra\n" +
	"LH402,not a date,2024-01-07,1234567,,,,fra,,jfk\n"

type memoryStore struct {
	doc    *schedule.Document
	getErr error
	putErr error
}

func (s *memoryStore) Get(ctx context.Context) (schedule.Document, error) {
	if s.getErr != nil {
		return schedule.Document{}, s.getErr
	} else if s.doc == nil {
		return schedule.Document{}, store.ErrNotFound
	}

	return *s.doc, nil
}

func (s *memoryStore) Put(ctx context.Context, doc schedule.Document) error {
	if s.putErr != nil {
		return s.putErr
	}

	s.doc = &doc
	return nil
}

type testServer struct {
	e       *echo.Echo
	s       *memoryStore
	metrics *Metrics
}

func newTestServer(t *testing.T, s *memoryStore, uploadLimiter *rate.Limiter) *testServer {
	t.Helper()

	if uploadLimiter == nil {
		uploadLimiter = rate.NewLimiter(rate.Inf, 1)
	}

	metrics := NewMetrics(prometheus.NewRegistry())
	e := echo.New()
	e.Use(
		ErrorLogAndMaskMiddleware(zap.NewNop()),
		NoCacheOnErrorMiddleware(),
	)

	Register(e, NewFlightsHandler(s, 2, metrics, zap.NewNop()), uploadLimiter)

	return &testServer{
		e:       e,
		s:       s,
		metrics: metrics,
	}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func storedDocument() *schedule.Document {
	return &schedule.Document{
		Flights: []schedule.RouteRecord{
			{Departure: "FRA", Arrival: "JFK", Dates: []string{"2024-01-01", "2024-01-02"}},
			{Departure: "jfk", Arrival: "fra ", Dates: []string{"2024-01-06"}},
			{Departure: "FRA", Arrival: "jfk", Dates: []string{"2024-02-01"}},
		},
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("comment", "no file here"))
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func testWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Flight No.", "Eff From", "Eff To", "Frequency", nil, nil, nil, "Dep", nil, "Arr"},
		{"LH400", 45292, 45298, "11111__", nil, nil, nil, "FRA", nil, "JFK"},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &memoryStore{}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUpload_RawCSV(t *testing.T) {
	ts := newTestServer(t, &memoryStore{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/upload?filename=summer.csv", strings.NewReader(testSchedule))
	req.Header.Set(echo.HeaderContentType, "text/csv")
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(HeaderIngestionId))

	var doc schedule.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	assert.Equal(
		t,
		[]schedule.RouteRecord{
			{Departure: "FRA", Arrival: "JFK", Dates: []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}},
			{Departure: "JFK", Arrival: "FRA", Dates: []string{"2024-01-06", "2024-01-07"}},
		},
		doc.Flights,
	)

	require.NotNil(t, doc.Metadata)
	assert.Equal(t, rec.Header().Get(HeaderIngestionId), doc.Metadata.Id.String())
	assert.Equal(t, "summer.csv", doc.Metadata.Source)
	assert.Equal(t, 3, doc.Metadata.Rows)
	assert.Equal(t, 1, doc.Metadata.SkippedRows)

	require.NotNil(t, ts.s.doc)
	assert.Equal(t, doc.Flights, ts.s.doc.Flights)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.Ingestions.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(ts.metrics.RowsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RowsSkipped))
}

func TestUpload_MultipartWorkbook(t *testing.T) {
	ts := newTestServer(t, &memoryStore{}, nil)

	body, contentType := multipartBody(t, "file", "summer.xlsx", testWorkbook(t))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc schedule.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(
		t,
		[]schedule.RouteRecord{
			{Departure: "FRA", Arrival: "JFK", Dates: []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}},
		},
		doc.Flights,
	)
}

func TestUpload_StoreFailureIsNotFatal(t *testing.T) {
	ts := newTestServer(t, &memoryStore{putErr: errors.New("unavailable")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/upload?filename=summer.csv", strings.NewReader(testSchedule))
	rec := ts.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, ts.s.doc)
}

func TestUpload_Rejected(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{}, nil)

		body, contentType := multipartBody(t, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := ts.do(req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing file", rec.Body.String())
	})

	t.Run("empty body", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{}, nil)

		rec := ts.do(httptest.NewRequest(http.MethodPost, "/upload", http.NoBody))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Uploaded file is empty or could not be read", rec.Body.String())
		assert.Contains(t, rec.Header().Get(echo.HeaderCacheControl), "no-store")
	})

	t.Run("empty file", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{}, nil)

		body, contentType := multipartBody(t, "file", "summer.xlsx", nil)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := ts.do(req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Uploaded file is empty or could not be read", rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/upload?filename=summer.csv", strings.NewReader("LH400,2024-01-01\n"))
		rec := ts.do(req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Error: Header row not found", rec.Body.String())
		assert.Nil(t, ts.s.doc)
	})

	t.Run("wrong method", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{}, nil)

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/upload", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "Use POST with an Excel file", rec.Body.String())
	})
}

func TestUpload_RateLimited(t *testing.T) {
	ts := newTestServer(t, &memoryStore{}, rate.NewLimiter(0, 1))

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/upload?filename=summer.csv", strings.NewReader(testSchedule)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodPost, "/upload?filename=summer.csv", strings.NewReader(testSchedule)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestFlights(t *testing.T) {
	t.Run("nothing stored", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{}, nil)

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/flights", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No flights stored", rec.Body.String())
	})

	t.Run("store error", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{getErr: errors.New("secret connection details")}, nil)

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/flights", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to read flights from store", rec.Body.String())
	})

	t.Run("stored", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{doc: storedDocument()}, nil)

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/flights", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var doc schedule.Document
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, storedDocument().Flights, doc.Flights)
	})
}

func TestRoute(t *testing.T) {
	ts := newTestServer(t, &memoryStore{doc: storedDocument()}, nil)

	t.Run("found", func(t *testing.T) {
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/route?departure=fra&arrival=Jfk", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"departure":"FRA","arrival":"JFK","dates":["2024-01-01","2024-01-02"],"count":2}`, rec.Body.String())
	})

	t.Run("found unnormalized record", func(t *testing.T) {
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/route?departure=JFK&arrival=FRA", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"departure":"jfk","arrival":"fra ","dates":["2024-01-06"],"count":1}`, rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/route?departure=muc&arrival=lhr", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"No flights found for route muc → lhr","departure":"MUC","arrival":"LHR"}`, rec.Body.String())
	})

	t.Run("missing parameters", func(t *testing.T) {
		for _, target := range []string{"/route", "/route?departure=FRA", "/route?arrival=JFK", "/route?departure=&arrival=JFK"} {
			rec := ts.do(httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
			assert.JSONEq(t, `{"error":"Missing required parameters: departure and arrival"}`, rec.Body.String(), target)
		}
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(ts.metrics.RouteQueries.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RouteQueries.WithLabelValues("not_found")))
}

func TestRoute_NothingStored(t *testing.T) {
	ts := newTestServer(t, &memoryStore{}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/route?departure=FRA&arrival=JFK", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoute_StoreError(t *testing.T) {
	ts := newTestServer(t, &memoryStore{getErr: errors.New("unavailable")}, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/route?departure=FRA&arrival=JFK", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to retrieve flights data"}`, rec.Body.String())
}

func TestRoutes(t *testing.T) {
	t.Run("stored", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{doc: storedDocument()}, nil)

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/routes", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":2,"routes":[{"departure":"FRA","arrival":"JFK"},{"departure":"JFK","arrival":"FRA"}]}`, rec.Body.String())
	})

	t.Run("nothing stored", func(t *testing.T) {
		ts := newTestServer(t, &memoryStore{}, nil)

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/routes", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":0,"routes":[]}`, rec.Body.String())
	})
}

func TestFallback(t *testing.T) {
	ts := newTestServer(t, &memoryStore{}, nil)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/", nil),
		httptest.NewRequest(http.MethodGet, "/somewhere/else", nil),
		httptest.NewRequest(http.MethodPost, "/flights", nil),
		httptest.NewRequest(http.MethodDelete, "/routes", nil),
	} {
		rec := ts.do(req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, req.URL.Path)

		b, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, "Use POST /upload or GET /flights", string(b))
	}
}
