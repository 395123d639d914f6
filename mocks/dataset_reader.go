package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/datalab/models"
)

type DatasetReader struct {
	mock.Mock
}

func (m *DatasetReader) QueryDataset(ctx context.Context, query models.DatasetQuery) (models.DatasetPage, error) {
	args := m.Called(query)
	return args.Get(0).(models.DatasetPage), args.Error(1)
}
