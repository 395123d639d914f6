package comparison

import (
	"fmt"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
)

// sharedColumns returns the columns present in both row sets, in the order they first appear in a.
func sharedColumns(a, b []models.Row) []string {
	return pure_utils.Intersection(models.ColumnsOfRows(a), models.ColumnsOfRows(b))
}

// numericColumn extracts the values of a column. It returns false as soon as a non null value is
// not numeric, or when the column holds no value at all.
func numericColumn(rows []models.Row, column string) ([]float64, bool) {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		f, numeric, null := pure_utils.NumericValue(row[column])
		if null {
			continue
		}
		if !numeric {
			return nil, false
		}
		values = append(values, f)
	}
	return values, len(values) > 0
}

// alignedPairs returns the index aligned values of a column on both sides, skipping positions
// where either side is null.
func alignedPairs(a, b []models.Row, column string) ([]float64, []float64) {
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(a))
	for i := range a {
		x, xNumeric, _ := pure_utils.NumericValue(a[i][column])
		y, yNumeric, _ := pure_utils.NumericValue(b[i][column])
		if xNumeric && yNumeric {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func valueKey(value any) string {
	return fmt.Sprintf("%T:%v", value, value)
}
