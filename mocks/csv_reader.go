package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/datalab/models"
)

type CsvReader struct {
	mock.Mock
}

func (m *CsvReader) ReadCsv(ctx context.Context, path string) (models.DatasetPage, error) {
	args := m.Called(path)
	return args.Get(0).(models.DatasetPage), args.Error(1)
}
