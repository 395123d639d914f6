package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/repositories"
)

type ScenarioRepository struct {
	mock.Mock
}

func (s *ScenarioRepository) CreateScenarioComparison(ctx context.Context, exec repositories.Executor,
	id string, input models.CreateScenarioComparisonInput,
) error {
	args := s.Called(exec, id, input)
	return args.Error(0)
}

func (s *ScenarioRepository) GetScenarioComparison(ctx context.Context, exec repositories.Executor,
	id string,
) (models.ScenarioComparison, error) {
	args := s.Called(exec, id)
	return args.Get(0).(models.ScenarioComparison), args.Error(1)
}

func (s *ScenarioRepository) ListScenarioComparisons(ctx context.Context, exec repositories.Executor,
	ownerId string,
) ([]models.ScenarioComparison, error) {
	args := s.Called(exec, ownerId)
	return args.Get(0).([]models.ScenarioComparison), args.Error(1)
}

func (s *ScenarioRepository) DeleteScenarioComparison(ctx context.Context, exec repositories.Executor, id string) error {
	args := s.Called(exec, id)
	return args.Error(0)
}

func (s *ScenarioRepository) CreateScenario(ctx context.Context, exec repositories.Executor, id string,
	input models.CreateScenarioInput, snapshot *models.ScenarioSnapshot,
) error {
	args := s.Called(exec, id, input, snapshot)
	return args.Error(0)
}

func (s *ScenarioRepository) GetScenario(ctx context.Context, exec repositories.Executor, id string) (models.Scenario, error) {
	args := s.Called(exec, id)
	return args.Get(0).(models.Scenario), args.Error(1)
}

func (s *ScenarioRepository) ListScenariosOfComparison(ctx context.Context, exec repositories.Executor,
	comparisonId string,
) ([]models.Scenario, error) {
	args := s.Called(exec, comparisonId)
	return args.Get(0).([]models.Scenario), args.Error(1)
}

func (s *ScenarioRepository) UpdateScenarioSnapshot(ctx context.Context, exec repositories.Executor,
	id string, snapshot models.ScenarioSnapshot,
) error {
	args := s.Called(exec, id, snapshot)
	return args.Error(0)
}
