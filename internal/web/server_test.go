package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/indicators/internal/config"
	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/division"
	"github.com/JonMunkholm/indicators/internal/metrics"
	"github.com/JonMunkholm/indicators/internal/schema"
	"github.com/JonMunkholm/indicators/internal/sheet"
	"github.com/JonMunkholm/indicators/internal/store/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20},
		Rate:   config.RateLimitConfig{Enabled: false},
	}
}

type testServer struct {
	*Server
	store *memory.Store
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) *testServer {
	t.Helper()
	store := memory.New()
	svc, err := core.NewService(store, division.NewRegistry("HR", "IT"), core.Options{HeaderRows: 1})
	require.NoError(t, err)
	return &testServer{Server: NewServer(svc, cfg, opts...), store: store}
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPost, path, strings.NewReader(body), "application/json")
}

func (ts *testServer) upload(t *testing.T, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return ts.do(t, http.MethodPost, "/api/order/upload", &buf, mw.FormDataContentType())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func workbook(t *testing.T) []byte {
	t.Helper()
	data, err := sheet.Write("Sheet1", schema.MainHeaders(), [][]string{
		{"1", "Goal", "", "Grow", "01-02-2024", "31-12-2024", "HR", `CORP\jdoe`, `CORP\asmith`},
		{"1.1", "Task", "", "Hire", "01-02-2024", "", "IT", `CORP\jdoe`, `CORP\asmith`},
	})
	require.NoError(t, err)
	return data
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t, testConfig())

	rec := ts.upload(t, "plan.xlsx", workbook(t))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[map[string]any](t, rec)
	assert.Equal(t, true, got["success"])
	assert.Equal(t, 1.0, got["valid"])
	assert.Equal(t, 1.0, got["quarantined"])
	assert.NotEmpty(t, got["importId"])
}

func TestUpload_Rejections(t *testing.T) {
	ts := newTestServer(t, testConfig())

	tests := []struct {
		name     string
		file     string
		data     []byte
		wantCode int
		wantErr  string
	}{
		{"wrong extension", "plan.csv", []byte("a,b\n"), http.StatusUnsupportedMediaType, "FILE002"},
		{"not a workbook", "plan.xlsx", []byte("hello"), http.StatusUnsupportedMediaType, "FILE002"},
		{"corrupt workbook", "plan.xlsx", append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0x17}, 64)...), http.StatusUnsupportedMediaType, "FILE002"},
		{"too large", "plan.xlsx", bytes.Repeat([]byte("x"), 2<<20), http.StatusRequestEntityTooLarge, "FILE001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.upload(t, tt.file, tt.data)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			got := decode[ErrorResponse](t, rec)
			assert.False(t, got.Success)
			assert.Equal(t, tt.wantErr, got.Code)
		})
	}

	rec := ts.do(t, http.MethodPost, "/api/order/upload", strings.NewReader(""), "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestData(t *testing.T) {
	ts := newTestServer(t, testConfig())
	ts.upload(t, "plan.xlsx", workbook(t))

	rec := ts.do(t, http.MethodGet, "/api/order/data", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[core.DataSnapshot](t, rec)
	require.Len(t, got.Indicators, 1)
	require.Len(t, got.Quarantined, 1)
	assert.Equal(t, core.KindGoal, got.Indicators[0].Structure)
	assert.Equal(t, core.ReasonEmptyDeadlineEnd, got.Quarantined[0].ErrorMessage)
	assert.Equal(t, []string{"HR", "IT"}, got.Divisions)
	assert.Contains(t, got.Structures, "Task")

	rec = ts.do(t, http.MethodGet, "/api/order/divisions", nil, "")
	assert.JSONEq(t, `{"divisions":["HR","IT"]}`, rec.Body.String())
}

func TestTransfer(t *testing.T) {
	ts := newTestServer(t, testConfig())
	ts.upload(t, "plan.xlsx", workbook(t))

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"empty list", `[]`, http.StatusBadRequest},
		{"not an array", `{"ids":[1]}`, http.StatusBadRequest},
		{"non-positive id", `[0]`, http.StatusBadRequest},
		{"unknown id", `[1, 99]`, http.StatusNotFound},
		{"ok", `[1]`, http.StatusOK},
		{"already transferred", `[1]`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.postJSON(t, "/api/order/transfer", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	inds, err := ts.store.ListIndicators(t.Context())
	require.NoError(t, err)
	assert.Len(t, inds, 2)
}

func TestUpdate(t *testing.T) {
	ts := newTestServer(t, testConfig())
	ts.upload(t, "plan.xlsx", workbook(t))

	rec := ts.postJSON(t, "/api/order/update/1", `{"number":"7","goal":"Grow faster"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[struct {
		Success   bool           `json:"success"`
		Indicator core.Indicator `json:"indicator"`
	}](t, rec)
	assert.True(t, got.Success)
	assert.Equal(t, "7.", got.Indicator.Number)
	assert.Equal(t, "Grow faster", got.Indicator.Goal)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{"bad id", "/api/order/update/abc", `{}`, http.StatusBadRequest},
		{"missing record", "/api/order/update/42", `{"goal":"x"}`, http.StatusNotFound},
		{"invalid structure", "/api/order/update/1", `{"structure":"Milestone"}`, http.StatusBadRequest},
		{"malformed json", "/api/order/update/1", `{"goal":`, http.StatusBadRequest},
		{"too long", "/api/order/update/1", `{"number":"` + strings.Repeat("1", 65) + `"}`, http.StatusBadRequest},
		{"quarantined record", "/api/order/update-error/1", `{"structure":"Milestone","errorMessage":""}`, http.StatusOK},
		{"missing quarantined", "/api/order/update-error/9", `{}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.postJSON(t, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, testConfig())
	ts.upload(t, "plan.xlsx", workbook(t))

	for _, kind := range []string{"main", "errors"} {
		rec := ts.do(t, http.MethodGet, "/api/order/export/"+kind, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxMIME, rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="indicators.xlsx"`, rec.Header().Get("Content-Disposition"))
		assert.NoError(t, core.DetectSpreadsheet(rec.Body.Bytes()))
	}

	rec := ts.do(t, http.MethodGet, "/api/order/export/pdf", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClear(t *testing.T) {
	ts := newTestServer(t, testConfig())
	ts.upload(t, "plan.xlsx", workbook(t))

	rec := ts.do(t, http.MethodPost, "/api/order/clear", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode[map[string]any](t, rec)["deleted"])

	rec = ts.do(t, http.MethodPost, "/api/order/clearErr", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode[map[string]any](t, rec)["deleted"])
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, UploadLimit: 1}
	ts := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodGet, "/api/order/divisions", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := ts.do(t, http.MethodGet, "/api/order/divisions", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.DivisionReload(2, nil)

	healthy := true
	ts := newTestServer(t, testConfig(),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		WithHealthCheck(func(ctx context.Context) error {
			if !healthy {
				return errors.New("db down")
			}
			return nil
		}),
	)

	rec := ts.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	healthy = false
	rec = ts.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = ts.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "indicators_divisions_loaded 2")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrNotFound, http.StatusNotFound},
		{core.ErrUnpromotable, http.StatusBadRequest},
		{core.ErrNotSpreadsheet, http.StatusUnsupportedMediaType},
		{sheet.ErrNoSheets, http.StatusUnsupportedMediaType},
		{core.ErrTooManyImports, http.StatusServiceUnavailable},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
