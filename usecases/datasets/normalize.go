package datasets

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/utils"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonWordCharacters = regexp.MustCompile(`[^a-z0-9_]+`)

const fallbackColumnName = "column"

// NormalizeColumnName is the single rule turning a user supplied header or key into a column name.
// It is used when creating a dataset, when inserting into it and when looking its columns up.
// Applying it to an already normalized name returns the name unchanged.
func NormalizeColumnName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = foldDiacritics(name)
	name = nonWordCharacters.ReplaceAllString(name, "_")
	if name == "" {
		name = fallbackColumnName
	}
	return utils.TruncateIdentifier(name)
}

// storageColumnName is the name a user column is stored under: the surrogate row id is reserved.
func storageColumnName(raw string) string {
	name := NormalizeColumnName(raw)
	if name == models.DATASET_ROW_ID_COLUMN {
		return name + "_"
	}
	return name
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
