package datasets

import (
	"io"
	"path"
	"strings"

	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

// UploadExtensions lists the file extensions accepted as dataset sources.
var UploadExtensions = []string{".csv", ".xlsx"}

func IsUploadExtension(fileName string) bool {
	ext := path.Ext(fileName)
	for _, allowed := range UploadExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

func isXlsx(fileName string) bool {
	return strings.EqualFold(path.Ext(fileName), ".xlsx")
}

// parseTabular picks the parser from the file extension, csv being the default.
func parseTabular(fileName string, r io.Reader) (models.DatasetPage, error) {
	if isXlsx(fileName) {
		return ParseXlsx(r)
	}
	return ParseCsv(r)
}

// ParseXlsx reads the first sheet of a workbook, its first line being the header. Cells are read
// as displayed and typed with InferValue, like csv cells.
func ParseXlsx(r io.Reader) (models.DatasetPage, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return models.DatasetPage{}, errors.Wrapf(models.BadParameterError, "invalid xlsx file: %s", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return models.DatasetPage{Columns: []string{}, Rows: []models.Row{}}, nil
	}
	records, err := workbook.GetRows(sheets[0])
	if err != nil {
		return models.DatasetPage{}, errors.Wrapf(models.BadParameterError, "could not read sheet %s: %s", sheets[0], err)
	}
	if len(records) == 0 {
		return models.DatasetPage{Columns: []string{}, Rows: []models.Row{}}, nil
	}

	columns := make([]string, len(records[0]))
	copy(columns, records[0])

	rows := make([]models.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) > len(columns) {
			return models.DatasetPage{}, errors.Wrapf(models.BadParameterError,
				"xlsx line %d has %d cells, header has %d", i+2, len(record), len(columns))
		}
		row := make(models.Row, len(columns))
		for j, column := range columns {
			if j < len(record) {
				row[column] = InferValue(record[j])
			} else {
				row[column] = nil
			}
		}
		rows = append(rows, row)
	}

	return models.DatasetPage{Columns: columns, Rows: rows}, nil
}
