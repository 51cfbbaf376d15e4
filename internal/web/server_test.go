package web

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sheetmap/internal/config"
	"github.com/JonMunkholm/sheetmap/internal/core"
	_ "github.com/JonMunkholm/sheetmap/internal/core/datasets"
)

const employeesJSON = `[
	{"name":"张三","department":"研发","join_date":"2021-03-15T09:30:00Z","salary":18000,"active":true,"level":"Senior","homepage":"https://example.com/zs","tags":["go","sql"]},
	{"name":"李四","department":"研发","join_date":"2022-07-01T08:00:00Z","salary":12000,"active":true,"level":"Junior"},
	{"name":"王五","department":"市场","join_date":"2020-01-06T00:00:00Z","salary":15000,"active":false,"level":"Lead"}
]`

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second, ShutdownTimeout: time.Second},
		Export:  config.ExportConfig{SheetName: core.DefaultSheetName, DateFormat: core.DefaultDateFormat, TableStyle: core.DefaultTableStyle, RowHeight: 28},
		Import:  config.ImportConfig{MaxFileSize: 1 << 20, Validate: true},
		Limits:  config.LimitsConfig{MaxConcurrent: 2, MaxWaitTime: time.Second},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	svc, err := core.NewService(core.ServiceConfig{
		SheetName:     cfg.Export.SheetName,
		DateFormat:    cfg.Export.DateFormat,
		TableStyle:    core.TableStyle(cfg.Export.TableStyleName()),
		RowHeight:     cfg.Export.RowHeight,
		Validate:      cfg.Import.Validate,
		MaxConcurrent: cfg.Limits.MaxConcurrent,
		MaxWait:       cfg.Limits.MaxWaitTime,
	})
	require.NoError(t, err)

	s := NewServer(svc, cfg)
	t.Cleanup(func() { _ = s.Shutdown(t.Context()) })
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func exportEmployees(t *testing.T, s *Server, query string) []byte {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/export/employees"+query, bytes.NewBufferString(employeesJSON))
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Body.Bytes()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.GreaterOrEqual(t, body.Datasets, 2)
	assert.Equal(t, 2, body.Conversions.MaxConcurrent)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestListDatasets(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []core.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	var keys []string
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	assert.Contains(t, keys, "employees")
	assert.Contains(t, keys, "order_lines")
}

func TestGetDataset(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/datasets/employees", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var info core.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "HR", info.Group)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/datasets/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "DS001", decodeError(t, rec).Code)
}

func TestExport_MappingOrder(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/export/employees?order=mapping", bytes.NewBufferString(employeesJSON))
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "employees_")
	assert.Equal(t, "3", rec.Header().Get("X-Record-Count"))
	assert.NotEmpty(t, rec.Header().Get("X-Operation-ID"))

	f := openWorkbook(t, rec.Body.Bytes())
	rows, err := f.GetRows(core.DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"部门", "姓名", "入职日期", "职级", "月薪", "状态", "个人主页", "标签1", "标签2", "标签3"}, rows[0])
	assert.Equal(t, "张三", rows[1][1])
}

func TestExport_DefaultMergeAndLinks(t *testing.T) {
	s := newTestServer(t, testConfig())

	data := exportEmployees(t, s, "?order=mapping&merge=default&link=Homepage")
	f := openWorkbook(t, data)

	merged, err := f.GetMergeCells(core.DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A2", merged[0].GetStartAxis())
	assert.Equal(t, "A3", merged[0].GetEndAxis())

	ok, link, err := f.GetCellHyperLink(core.DefaultSheetName, "G2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/zs", link)
}

func TestExport_DefaultMergeUsesMappingOrder(t *testing.T) {
	s := newTestServer(t, testConfig())

	data := exportEmployees(t, s, "?merge=default")
	f := openWorkbook(t, data)

	header, err := f.GetCellValue(core.DefaultSheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "部门", header)

	merged, err := f.GetMergeCells(core.DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A2", merged[0].GetStartAxis())
	assert.Equal(t, "A3", merged[0].GetEndAxis())

	for cell, want := range map[string]string{"B2": "张三", "B3": "李四", "B4": "王五"} {
		got, err := f.GetCellValue(core.DefaultSheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
}

func TestExport_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown dataset", "/api/export/nope", "[]", http.StatusNotFound, "DS001"},
		{"bad order", "/api/export/employees?order=random", "[]", http.StatusBadRequest, "CFG001"},
		{"bad links", "/api/export/employees?links=some", "[]", http.StatusBadRequest, "CFG001"},
		{"bad width", "/api/export/employees?merge=Department&width=0", "[]", http.StatusBadRequest, "CFG001"},
		{"merge wider than sheet", "/api/export/employees?merge=Department&width=99", employeesJSON, http.StatusBadRequest, "CFG001"},
		{"not json", "/api/export/employees", "{oops", http.StatusBadRequest, "REQ003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body)))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestTemplate(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/template/order_lines", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "order_lines_template_")

	f := openWorkbook(t, rec.Body.Bytes())
	rows, err := f.GetRows(core.DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "订单号", rows[0][0])
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "upload.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImport_RoundTripMultipart(t *testing.T) {
	s := newTestServer(t, testConfig())
	data := exportEmployees(t, s, "?order=mapping")

	body, contentType := multipartBody(t, "file", data)
	req := httptest.NewRequest(http.MethodPost, "/api/import/employees", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "employees", res.Dataset)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, res.OperationID, rec.Header().Get("X-Operation-ID"))

	var got []struct {
		Name   string `json:"name"`
		Level  string `json:"level"`
		Salary float64
	}
	require.NoError(t, json.Unmarshal(res.Records, &got))
	require.Len(t, got, 3)
	assert.Equal(t, "王五", got[2].Name)
	assert.Equal(t, "Lead", got[2].Level)
}

func TestImport_RawBody(t *testing.T) {
	s := newTestServer(t, testConfig())
	data := exportEmployees(t, s, "")

	req := httptest.NewRequest(http.MethodPost, "/api/import/employees", bytes.NewReader(data))
	req.Header.Set("Content-Type", xlsxContentType)
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestImport_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	t.Run("not a workbook", func(t *testing.T) {
		rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/import/employees", bytes.NewBufferString("hello")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "WB001", decodeError(t, rec).Code)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/import/nope", bytes.NewBufferString("hello")))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		cfg := testConfig()
		cfg.Import.MaxFileSize = 64
		small := newTestServer(t, cfg)

		rec := serve(small, httptest.NewRequest(http.MethodPost, "/api/import/employees", bytes.NewReader(make([]byte, 128))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "FILE001", decodeError(t, rec).Code)
	})

	t.Run("missing file part", func(t *testing.T) {
		body, contentType := multipartBody(t, "other", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/import/employees", body)
		req.Header.Set("Content-Type", contentType)
		rec := serve(s, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "FILE004", decodeError(t, rec).Code)
	})
}

func TestImport_ValidationFailure(t *testing.T) {
	s := newTestServer(t, testConfig())

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"部门", "姓名", "月薪"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"研发", "张三", -5}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/import/employees", buf))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL001", decodeError(t, rec).Code)
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	s := newTestServer(t, cfg)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, serve(s, req).Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(1, 50*time.Millisecond)
	defer rl.stop()

	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.allow("a"))
}

func TestParseExportRequest(t *testing.T) {
	req, err := parseExportRequest(map[string][]string{
		"order": {"Mapping"},
		"link":  {"Homepage", "Site"},
		"merge": {"Department"},
		"width": {"2"},
	}, "employees")
	require.NoError(t, err)
	assert.Equal(t, core.OrderMapping, req.Order)
	assert.Equal(t, core.LinkNamed, req.Links)
	assert.Equal(t, []string{"Homepage", "Site"}, req.LinkFields)
	assert.Equal(t, &core.MergeSpec{Unique: "Department", Width: 2}, req.Merge)

	req, err = parseExportRequest(map[string][]string{"links": {"all"}}, "employees")
	require.NoError(t, err)
	assert.Equal(t, core.LinkAll, req.Links)
	assert.Nil(t, req.Merge)

	req, err = parseExportRequest(map[string][]string{"merge": {"default"}}, "order_lines")
	require.NoError(t, err)
	assert.Equal(t, &core.MergeSpec{Unique: "OrderNo", Width: 3}, req.Merge)
	assert.Equal(t, core.OrderMapping, req.Order)

	req, err = parseExportRequest(map[string][]string{"merge": {"Department"}}, "employees")
	require.NoError(t, err)
	assert.Equal(t, core.OrderMapping, req.Order)

	req, err = parseExportRequest(map[string][]string{"merge": {"Department"}, "order": {"natural"}}, "employees")
	require.NoError(t, err)
	assert.Equal(t, core.OrderNatural, req.Order)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusRequestEntityTooLarge, statusFor(&http.MaxBytesError{Limit: 1}, "ERR000"))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(core.ErrTooManyConversions, "BUSY001"))
	assert.Equal(t, http.StatusBadRequest, statusFor(nil, "CONV002"))
	assert.Equal(t, http.StatusInternalServerError, statusFor(nil, "ERR000"))
}
