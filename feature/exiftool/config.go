package exiftool

// Config holds configuration for the ExifTool processor.
type Config struct {
	// Command is the exiftool executable name or path.
	Command string `mapstructure:"command" default:"exiftool"`
	// TimeoutSeconds bounds a single exiftool invocation.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
