package datasets

import (
	"context"
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/utils"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mohae/deepcopy"
	"github.com/prometheus/client_golang/prometheus"
)

// CsvCache holds recently parsed files, by path. Uploaded files are written once under a unique
// path, so an entry only goes stale if a file is replaced in the bucket by hand, for at most ttl.
type CsvCache = expirable.LRU[string, models.DatasetPage]

func NewCsvCache(size int, ttl time.Duration) *CsvCache {
	return expirable.NewLRU[string, models.DatasetPage](size, nil, ttl)
}

// CachedCsvReader serves files from a CsvCache shared by every reader of the process.
type CachedCsvReader struct {
	reader CsvReader
	cache  *CsvCache
}

func NewCachedCsvReader(reader CsvReader, cache *CsvCache) CachedCsvReader {
	return CachedCsvReader{reader: reader, cache: cache}
}

// ReadCsv returns a copy of the cached page: callers are free to modify the rows they get.
func (r CachedCsvReader) ReadCsv(ctx context.Context, path string) (models.DatasetPage, error) {
	if page, ok := r.cache.Get(path); ok {
		utils.MetricCsvCacheLookups.With(prometheus.Labels{"result": "hit"}).Inc()
		return copyPage(page), nil
	}
	utils.MetricCsvCacheLookups.With(prometheus.Labels{"result": "miss"}).Inc()

	page, err := r.reader.ReadCsv(ctx, path)
	if err != nil {
		return models.DatasetPage{}, err
	}
	r.cache.Add(path, page)
	return copyPage(page), nil
}

func copyPage(page models.DatasetPage) models.DatasetPage {
	return deepcopy.Copy(page).(models.DatasetPage)
}
