package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	ExecutorGetter     ExecutorGetter
	LivenessRepository LivenessRepository
	DatasetRepository  DatasetRepository
	ScenarioRepository ScenarioRepository
	BlobRepository     BlobRepository
}

func NewRepositories(marbleConnectionPool *pgxpool.Pool) Repositories {
	return Repositories{
		ExecutorGetter:     NewExecutorGetter(marbleConnectionPool),
		LivenessRepository: LivenessRepository{},
		DatasetRepository:  &DatasetRepositoryPostgresql{},
		ScenarioRepository: &ScenarioRepositoryPostgresql{},
		BlobRepository:     NewBlobRepository(),
	}
}
