package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("DATALAB_TEST_STRING", "value")
	t.Setenv("DATALAB_TEST_INT", "42")
	t.Setenv("DATALAB_TEST_BOOL", "true")
	t.Setenv("DATALAB_TEST_DURATION", "1m30s")
	t.Setenv("DATALAB_TEST_EMPTY", "")

	assert.Equal(t, "value", GetEnv("DATALAB_TEST_STRING", "default"))
	assert.Equal(t, 42, GetEnv("DATALAB_TEST_INT", 0))
	assert.Equal(t, true, GetEnv("DATALAB_TEST_BOOL", false))
	assert.Equal(t, 90*time.Second, GetEnv("DATALAB_TEST_DURATION", time.Second))
	assert.Equal(t, "default", GetEnv("DATALAB_TEST_EMPTY", "default"))
	assert.Equal(t, 7, GetEnv("DATALAB_TEST_UNSET", 7))
}

func TestGetEnvPanicsOnInvalidValue(t *testing.T) {
	t.Setenv("DATALAB_TEST_INT", "forty-two")

	assert.Panics(t, func() { GetEnv("DATALAB_TEST_INT", 0) })
}
