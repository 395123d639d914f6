package integration

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
)

func salesRows(days int, factor float64) ([]map[string]any, string) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]map[string]any, 0, days)
	var csv strings.Builder
	csv.WriteString("Day,Amount,Region\n")
	for i := range days {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		amount := float64(100+i) * factor
		region := []string{"north", "south"}[i%2]
		rows = append(rows, map[string]any{"day": day, "amount": amount, "region": region})
		fmt.Fprintf(&csv, "%s,%.2f,%s\n", day, amount, region)
	}
	return rows, csv.String()
}

func TestDatasetsAndScenarioComparison(t *testing.T) {
	e := httpexpect.Default(t, testServer.URL)

	e.GET("/liveness").Expect().Status(http.StatusOK)

	auth := e.Builder(func(req *httpexpect.Request) {
		req.WithHeader("X-User-Id", testOwnerId)
	})

	rowsA, _ := salesRows(30, 1)
	_, csvB := salesRows(30, 1.2)

	// Dataset from inline rows, with an inferred schema
	created := auth.POST("/datasets").
		WithJSON(map[string]any{"name": "Sales", "rows": rowsA}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("dataset").Object()
	created.Value("name").String().IsEqual("sales")
	created.Value("inserted_rows").Number().IsEqual(30)
	created.Value("columns").Array().Length().IsEqual(3)

	// A dataset is only created once
	auth.POST("/datasets").
		WithJSON(map[string]any{"name": "sales", "rows": rowsA}).
		Expect().Status(http.StatusConflict)

	page := auth.GET("/datasets/sales/rows").
		WithQuery("limit", 2).WithQuery("offset", 1).
		Expect().Status(http.StatusOK).
		JSON().Object()
	page.Value("columns").Array().ContainsAll("id", "day", "amount", "region")
	page.Value("rows").Array().Length().IsEqual(2)
	page.Value("rows").Array().Value(0).Object().Value("id").Number().IsEqual(2)

	auth.POST("/datasets/sales/rows").
		WithJSON(map[string]any{"rows": []map[string]any{{"day": "2024-03-01", "amount": "not a number"}}}).
		Expect().Status(http.StatusBadRequest)

	// Dataset from an uploaded csv file
	uploaded := auth.POST("/datasets/upload").
		WithMultipart().
		WithFormField("name", "sales_b").
		WithFileBytes("file", "sales_b.csv", []byte(csvB)).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("dataset").Object()
	uploaded.Value("inserted_rows").Number().IsEqual(30)
	uploaded.Value("file_path").String().NotEmpty()

	auth.GET("/datasets").
		Expect().Status(http.StatusOK).
		JSON().Object().Value("datasets").Array().Length().IsEqual(2)

	// Comparison between the two datasets
	comparisonId := auth.POST("/comparisons").
		WithJSON(map[string]any{"name": "budget vs actual"}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("comparison").Object().Value("id").String().Raw()

	scenarioA := auth.POST(fmt.Sprintf("/comparisons/%s/scenarios", comparisonId)).
		WithJSON(map[string]any{
			"name":          "actual",
			"source_type":   "table",
			"source_id":     "sales",
			"take_snapshot": true,
			"columns":       []string{"day", "amount", "region"},
		}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("scenario").Object()
	scenarioA.Value("snapshot").Object().Value("rows").Number().IsEqual(30)
	scenarioAId := scenarioA.Value("id").String().Raw()

	scenarioBId := auth.POST(fmt.Sprintf("/comparisons/%s/scenarios", comparisonId)).
		WithJSON(map[string]any{
			"name":          "budget",
			"source_type":   "table",
			"source_id":     "sales_b",
			"take_snapshot": true,
			"columns":       []string{"day", "amount", "region"},
		}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("scenario").Object().Value("id").String().Raw()

	report := auth.GET(fmt.Sprintf("/comparisons/%s/compare", comparisonId)).
		Expect().Status(http.StatusOK).
		JSON().Object()
	report.Value("global_stats").Object().Value("rows").Number().IsEqual(30)
	report.Value("global_stats").Object().Value("similarity_score").Number().InDelta(0.8, 0.001)
	report.Value("suggestions").Array().Length().IsEqual(1)
	suggestion := report.Value("suggestions").Array().Value(0).Object()
	suggestion.Value("column").String().IsEqual("amount")
	suggestion.Value("direction").String().IsEqual("increase")
	suggestion.Value("change_pct").Number().InDelta(20, 0.01)

	// The snapshot survives the dataset it was taken from
	auth.DELETE("/datasets/sales").Expect().Status(http.StatusNoContent)
	auth.GET("/datasets/sales/rows").Expect().Status(http.StatusNotFound)
	auth.GET(fmt.Sprintf("/scenarios/%s/data", scenarioAId)).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("rows").Array().Length().IsEqual(30)

	// Projection of the first scenario
	projection := auth.POST(fmt.Sprintf("/scenarios/%s/projection", scenarioAId)).
		WithJSON(map[string]any{"date_column": "day", "value_columns": []string{"amount"}, "periods": 3}).
		Expect().Status(http.StatusCreated).
		JSON().Object()
	projection.Value("rows").Array().Length().IsEqual(3)
	projection.Value("rows").Array().Value(0).Object().Value("day").String().IsEqual("2024-01-31")
	projection.Value("scenario").Object().Value("scenario_type").String().IsEqual("projection")
	projection.Value("scenario").Object().Value("name").String().IsEqual("actual (projection)")

	// Three scenarios: the pair to compare must be explicit
	auth.GET(fmt.Sprintf("/comparisons/%s/compare", comparisonId)).
		Expect().Status(http.StatusBadRequest)
	auth.GET(fmt.Sprintf("/comparisons/%s/compare", comparisonId)).
		WithQuery("scenario_a", scenarioAId).
		WithQuery("scenario_b", scenarioBId).
		Expect().Status(http.StatusOK)

	auth.DELETE(fmt.Sprintf("/comparisons/%s", comparisonId)).Expect().Status(http.StatusNoContent)
	auth.GET(fmt.Sprintf("/scenarios/%s", scenarioBId)).Expect().Status(http.StatusNotFound)
}

func TestManualScenario(t *testing.T) {
	e := httpexpect.Default(t, testServer.URL)

	comparisonId := e.POST("/comparisons").
		WithJSON(map[string]any{"name": "manual"}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("comparison").Object().Value("id").String().Raw()

	scenarioId := e.POST(fmt.Sprintf("/comparisons/%s/scenarios", comparisonId)).
		WithJSON(map[string]any{
			"name":        "typed by hand",
			"source_type": "manual",
			"data":        []map[string]any{{"amount": 1}, {"amount": 2}},
		}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("scenario").Object().Value("id").String().Raw()

	e.GET(fmt.Sprintf("/scenarios/%s/data", scenarioId)).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("rows").Array().Length().IsEqual(2)

	// No live source to read from
	e.POST(fmt.Sprintf("/scenarios/%s/snapshot", scenarioId)).
		Expect().Status(http.StatusBadRequest)

	// A single scenario cannot be compared
	e.GET(fmt.Sprintf("/comparisons/%s/compare", comparisonId)).
		Expect().Status(http.StatusBadRequest)
}
