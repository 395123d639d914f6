package api

import (
	"time"
)

type Configuration struct {
	Env        string
	AppName    string
	AppVersion string
	// Listening interface, all of them when empty
	Host                string
	Port                string
	RequestLoggingLevel string
	// Browser origins allowed by CORS, on top of the localhost ones in development
	AllowedOrigins    []string
	DefaultTimeout    time.Duration
	ProjectionTimeout time.Duration
	MaxUploadBytes    int64
}
