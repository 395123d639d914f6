package usecases

import (
	"github.com/checkmarble/datalab/infra"
	"github.com/checkmarble/datalab/repositories"
	"github.com/checkmarble/datalab/usecases/datasets"
	"github.com/checkmarble/datalab/usecases/executor_factory"
	"github.com/checkmarble/datalab/usecases/projection"
	"github.com/checkmarble/datalab/usecases/projection/forecast"
	"github.com/checkmarble/datalab/usecases/scenarios"
)

const (
	CsvReaderBlob   = "blob"
	CsvReaderDuckDb = "duckdb"
)

type Usecases struct {
	Repositories    repositories.Repositories
	appName         string
	apiVersion      string
	uploadsConfig   infra.UploadsConfiguration
	maxParallelFits int
	csvCache        func(datasets.CsvReader) datasets.CsvReader
}

type Option func(*options)

func WithAppName(appName string) Option {
	return func(o *options) {
		o.appName = appName
	}
}

func WithApiVersion(apiVersion string) Option {
	return func(o *options) {
		o.apiVersion = apiVersion
	}
}

func WithUploads(config infra.UploadsConfiguration) Option {
	return func(o *options) {
		o.uploadsConfig = config
	}
}

func WithMaxParallelFits(n int) Option {
	return func(o *options) {
		o.maxParallelFits = n
	}
}

type options struct {
	appName         string
	apiVersion      string
	uploadsConfig   infra.UploadsConfiguration
	maxParallelFits int
}

func NewUsecases(repositories repositories.Repositories, opts ...Option) Usecases {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.uploadsConfig.CsvReader == "" {
		o.uploadsConfig.CsvReader = CsvReaderBlob
	}
	uc := Usecases{
		Repositories:    repositories,
		appName:         o.appName,
		apiVersion:      o.apiVersion,
		uploadsConfig:   o.uploadsConfig,
		maxParallelFits: o.maxParallelFits,
	}
	// One cache for the process: readers are rebuilt on every request
	if o.uploadsConfig.CacheSize > 0 && o.uploadsConfig.CacheTtl > 0 {
		cache := datasets.NewCsvCache(o.uploadsConfig.CacheSize, o.uploadsConfig.CacheTtl)
		uc.csvCache = func(reader datasets.CsvReader) datasets.CsvReader {
			return datasets.NewCachedCsvReader(reader, cache)
		}
	}
	return uc
}

func (usecases *Usecases) NewExecutorFactory() executor_factory.ExecutorFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) NewTransactionFactory() executor_factory.TransactionFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) NewLivenessUsecase() LivenessUsecase {
	return LivenessUsecase{
		executorFactory:    usecases.NewExecutorFactory(),
		livenessRepository: usecases.Repositories.LivenessRepository,
	}
}

func (usecases *Usecases) NewVersionUsecase() VersionUsecase {
	return VersionUsecase{
		AppName:    usecases.appName,
		ApiVersion: usecases.apiVersion,
	}
}

func (usecases *Usecases) NewCsvReader() datasets.CsvReader {
	var reader datasets.CsvReader
	if usecases.uploadsConfig.CsvReader == CsvReaderDuckDb {
		reader = datasets.NewDuckDbCsvReader(executor_factory.NewCsvExecutorFactory(), usecases.uploadsConfig.LocalDirectory)
	} else {
		reader = datasets.NewBlobCsvReader(usecases.Repositories.BlobRepository, usecases.uploadsConfig.BucketUrl)
	}
	if usecases.csvCache == nil {
		return reader
	}
	return usecases.csvCache(reader)
}

func (usecases *Usecases) NewDatasetUsecase() datasets.DatasetUsecase {
	return datasets.NewDatasetUsecase(
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
		usecases.Repositories.DatasetRepository,
		usecases.Repositories.BlobRepository,
		usecases.NewCsvReader(),
		usecases.uploadsConfig.BucketUrl,
	)
}

func (usecases *Usecases) NewSnapshotManager() scenarios.SnapshotManager {
	return scenarios.NewSnapshotManager(
		usecases.NewExecutorFactory(),
		usecases.Repositories.ScenarioRepository,
		usecases.NewDatasetUsecase(),
		usecases.NewCsvReader(),
	)
}

func (usecases *Usecases) NewProjectionEngine() projection.ProjectionEngine {
	return projection.NewProjectionEngine(forecast.NewTrendSeasonalForecaster(), usecases.maxParallelFits)
}

func (usecases *Usecases) NewScenarioUsecase() scenarios.ScenarioUsecase {
	return scenarios.NewScenarioUsecase(
		usecases.NewExecutorFactory(),
		usecases.Repositories.ScenarioRepository,
		usecases.NewSnapshotManager(),
		usecases.NewProjectionEngine(),
	)
}
