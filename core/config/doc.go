// Package config provides configuration management for the binary metadata service.
//
// It uses godotenv to load an optional .env file and Viper to read environment
// variables, with defaults taken from the `default` struct tags of every section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, API key, body limit and shutdown budget
//   - Storage: S3/MinIO credentials and bucket for document blobs
//   - Log: Logging level and format
//   - Database: MySQL or SQLite connection for documents
//   - Metadata: descriptor file, extraction cache, error policy and async workers
//   - ExifTool: exiftool command and per-call timeout
//
// Nested keys map to upper-case environment variables joined by underscores,
// e.g. METADATA_DESCRIPTOR_FILE or EXIFTOOL_TIMEOUT_SECONDS.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Metadata.DescriptorFile)
package config
