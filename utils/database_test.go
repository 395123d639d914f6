package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnList(t *testing.T) {
	type dbThing struct {
		Id      string `db:"id"`
		Name    string `db:"name"`
		Ignored string `db:"-"`
		NoTag   string
	}

	assert.Equal(t, []string{"id", "name"}, ColumnList[dbThing]())
	assert.Equal(t, []string{"t.id", "t.name"}, ColumnList[dbThing]("t"))
}
