package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type envVarType interface {
	string | int | bool | float64 | time.Duration
}

func parseEnv[T envVarType](envVarName, envValue string) (T, error) {
	var zero T
	var value any
	var err error

	switch any(zero).(type) {
	case string:
		value = envValue
	case int:
		value, err = strconv.Atoi(envValue)
	case bool:
		value, err = strconv.ParseBool(envValue)
	case float64:
		value, err = strconv.ParseFloat(envValue, 64)
	case time.Duration:
		value, err = time.ParseDuration(envValue)
	}
	if err != nil {
		return zero, fmt.Errorf("environment variable %s is not valid: '%s' cannot be parsed as %T: %w",
			envVarName, envValue, zero, err)
	}
	return value.(T), nil
}

// GetEnv reads an environment variable and parses it into the type of the default value.
// The default value is used when the variable is unset or empty.
func GetEnv[T envVarType](envVarName string, defaultValue T) T {
	envValue, ok := os.LookupEnv(envVarName)
	if !ok || envValue == "" {
		return defaultValue
	}
	value, err := parseEnv[T](envVarName, envValue)
	if err != nil {
		panic(err)
	}
	return value
}

func GetRequiredEnv[T envVarType](envVarName string) T {
	envValue, ok := os.LookupEnv(envVarName)
	if !ok || envValue == "" {
		log.Fatalf("%s environment variable is required", envVarName)
	}
	value, err := parseEnv[T](envVarName, envValue)
	if err != nil {
		log.Fatal(err)
	}
	return value
}
