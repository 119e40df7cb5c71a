package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps request bodies, including uploaded blobs.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"64"`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"15"`
}

const (
	defaultBodyLimitMB     = 64
	defaultShutdownSeconds = 15
)

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return defaultBodyLimitMB << 20
	}
	return c.BodyLimitMB << 20
}

// ShutdownTimeout returns the graceful shutdown budget in seconds.
func (c Config) ShutdownTimeout() int {
	if c.ShutdownTimeoutSeconds <= 0 {
		return defaultShutdownSeconds
	}
	return c.ShutdownTimeoutSeconds
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}
