package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/checkmarble/datalab/dto"
	"github.com/checkmarble/datalab/repositories"
	"github.com/checkmarble/datalab/usecases"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

// Requests rejected before any usecase runs do not need a database.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	InitValidator()

	r := gin.New()
	r.Use(storeOwnerIdMiddleware)
	uc := usecases.NewUsecases(
		repositories.Repositories{},
		usecases.WithAppName("datalab"),
		usecases.WithApiVersion("v0.1.0"),
	)
	addRoutes(r, Configuration{}, uc)
	return r
}

func serve(r *gin.Engine, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, dto.APIErrorResponse) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	r.ServeHTTP(w, req)

	var resp dto.APIErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestVersionRoute(t *testing.T) {
	r := newTestRouter()

	w, _ := serve(r, http.MethodGet, "/version", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"app": "datalab", "version": "v0.1.0"}`, w.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	r := newTestRouter()

	w, _ := serve(r, http.MethodGet, "/metrics", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestDatasetRoutesValidation(t *testing.T) {
	r := newTestRouter()

	t.Run("invalid dataset name in body", func(t *testing.T) {
		w, resp := serve(r, http.MethodPost, "/datasets",
			jsonBody(`{"name": "sales;drop", "rows": [{"a": 1}]}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.InvalidPayload, resp.ErrorCode)
		require.Len(t, resp.Details, 1)
		assert.Contains(t, resp.Details[0], "field `name` may only contain letters")
	})

	t.Run("missing name", func(t *testing.T) {
		w, resp := serve(r, http.MethodPost, "/datasets", jsonBody(`{"rows": []}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Details, "field `name` is required")
	})

	t.Run("empty body", func(t *testing.T) {
		w, _ := serve(r, http.MethodPost, "/datasets", nil, "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid dataset name in path", func(t *testing.T) {
		w, _ := serve(r, http.MethodGet, "/datasets/sales-2024/rows", nil, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative limit", func(t *testing.T) {
		w, resp := serve(r, http.MethodGet, "/datasets/sales/rows?limit=-1", nil, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Details, "field `limit` must be at least 0")
	})

	t.Run("insert without rows", func(t *testing.T) {
		w, _ := serve(r, http.MethodPost, "/datasets/sales/rows", jsonBody(`{"rows": []}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func multipartUpload(t *testing.T, name, fileName, content string) (io.Reader, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if name != "" {
		require.NoError(t, writer.WriteField("name", name))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadDatasetValidation(t *testing.T) {
	r := newTestRouter()

	t.Run("missing file", func(t *testing.T) {
		body, contentType := multipartUpload(t, "sales", "", "")
		w, _ := serve(r, http.MethodPost, "/datasets/upload", body, contentType)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not a csv or xlsx file", func(t *testing.T) {
		body, contentType := multipartUpload(t, "sales", "sales.json", "[]")
		w, resp := serve(r, http.MethodPost, "/datasets/upload", body, contentType)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Message, "is not a csv or xlsx file")
	})

	t.Run("invalid name", func(t *testing.T) {
		body, contentType := multipartUpload(t, "sales data", "sales.csv", "a,b\n1,2\n")
		w, _ := serve(r, http.MethodPost, "/datasets/upload", body, contentType)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDatasetChartValidation(t *testing.T) {
	r := newTestRouter()

	t.Run("type is required", func(t *testing.T) {
		w, _ := serve(r, http.MethodGet, "/datasets/sales/chart?x=region", nil, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		w, resp := serve(r, http.MethodGet, "/datasets/sales/chart?type=radar&x=region", nil, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Details, "field `type` must be one of pie, bar, line, histogram, boxplot, scatter, heatmap")
	})

	t.Run("invalid dataset name", func(t *testing.T) {
		w, _ := serve(r, http.MethodGet, "/datasets/sales%20data/chart?type=pie&x=region", nil, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestComparisonRoutesValidation(t *testing.T) {
	r := newTestRouter()
	id := uuid.NewString()

	t.Run("comparison id must be a uuid", func(t *testing.T) {
		w, resp := serve(r, http.MethodGet, "/comparisons/42", nil, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Details, "field `id` should be a UUID")
	})

	t.Run("comparison name is required", func(t *testing.T) {
		w, _ := serve(r, http.MethodPost, "/comparisons", jsonBody(`{"config": {}}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown source type", func(t *testing.T) {
		w, resp := serve(r, http.MethodPost, "/comparisons/"+id+"/scenarios",
			jsonBody(`{"name": "base", "source_type": "api"}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Details, "field `source_type` must be one of table, csv, manual, snapshot")
	})

	t.Run("invalid table source", func(t *testing.T) {
		w, _ := serve(r, http.MethodPost, "/comparisons/"+id+"/scenarios",
			jsonBody(`{"name": "base", "source_type": "table", "source_id": "no such;table"}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("one scenario id only", func(t *testing.T) {
		w, _ := serve(r, http.MethodGet, "/comparisons/"+id+"/compare?scenario_a="+uuid.NewString(), nil, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestScenarioRoutesValidation(t *testing.T) {
	r := newTestRouter()
	id := uuid.NewString()

	t.Run("projection requires periods", func(t *testing.T) {
		w, resp := serve(r, http.MethodPost, "/scenarios/"+id+"/projection",
			jsonBody(`{"date_column": "day"}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, resp.Details, "field `periods` is required")
	})

	t.Run("projection requires a date column", func(t *testing.T) {
		w, _ := serve(r, http.MethodPost, "/scenarios/"+id+"/projection",
			jsonBody(`{"periods": 3}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("snapshot filter without operator", func(t *testing.T) {
		w, _ := serve(r, http.MethodPost, "/scenarios/"+id+"/snapshot",
			jsonBody(`{"filters": [{"column": "amount", "value": 3}]}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
