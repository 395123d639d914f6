package pure_utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntersection(t *testing.T) {
	assert.Equal(t, []string{"b", "c"}, Intersection([]string{"a", "b", "c", "b"}, []string{"c", "b", "d"}))
	assert.Equal(t, []string{}, Intersection([]string{"a"}, []string{}))
}
