package dbmodels

import (
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/utils"
)

// Schema holding the user datasets, kept apart from the application tables
const DATASETS_SCHEMA = "datasets"

const TABLE_DATASET_METADATA = "dataset_metadata"

type DBDatasetMetadata struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	OwnerId   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}

var SelectDatasetMetadataColumns = utils.ColumnList[DBDatasetMetadata]()

func AdaptDataset(db DBDatasetMetadata) (models.Dataset, error) {
	name, err := models.NewDatasetName(db.Name)
	if err != nil {
		return models.Dataset{}, err
	}
	return models.Dataset{
		Id:        db.Id,
		Name:      name,
		OwnerId:   db.OwnerId,
		CreatedAt: db.CreatedAt,
	}, nil
}
