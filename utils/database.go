package utils

import (
	"reflect"
)

// ColumnList returns the `db` tags of a db model struct, in field order, to be used in a SELECT.
// Optional prefix qualifies every column with a table name or alias.
func ColumnList[T any](prefix ...string) []string {
	var zero T
	t := reflect.TypeOf(zero)

	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		if len(prefix) > 0 {
			tag = prefix[0] + "." + tag
		}
		columns = append(columns, tag)
	}
	return columns
}
