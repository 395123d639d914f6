package datasets

import (
	"context"
	"testing"
	"time"

	"github.com/checkmarble/datalab/mocks"
	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedCsvReader(t *testing.T) {
	ctx := context.Background()
	city := faker.Word()
	page := models.DatasetPage{
		Columns: []string{"city", "amount"},
		Rows:    []models.Row{{"city": city, "amount": int64(3)}, {"city": faker.Word(), "amount": nil}},
	}

	t.Run("reads each file once", func(t *testing.T) {
		inner := new(mocks.CsvReader)
		inner.On("ReadCsv", "sales.csv").Return(page, nil).Once()
		reader := NewCachedCsvReader(inner, NewCsvCache(4, time.Minute))

		first, err := reader.ReadCsv(ctx, "sales.csv")
		require.NoError(t, err)
		first.Rows[0]["city"] = "changed by the caller"

		second, err := reader.ReadCsv(ctx, "sales.csv")
		require.NoError(t, err)
		assert.Equal(t, city, second.Rows[0]["city"])
		assert.Nil(t, second.Rows[1]["amount"])
		inner.AssertExpectations(t)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := new(mocks.CsvReader)
		inner.On("ReadCsv", "missing.csv").Return(models.DatasetPage{}, models.NotFoundError).Twice()
		reader := NewCachedCsvReader(inner, NewCsvCache(4, time.Minute))

		_, err := reader.ReadCsv(ctx, "missing.csv")
		assert.True(t, errors.Is(err, models.NotFoundError))
		_, err = reader.ReadCsv(ctx, "missing.csv")
		assert.True(t, errors.Is(err, models.NotFoundError))
		inner.AssertExpectations(t)
	})
}
