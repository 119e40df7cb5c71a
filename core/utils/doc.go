// Package utils provides common utility functions for the binary-metadata application.
// It includes helper functions for type conversion and value inspection shared by
// the metadata engine, filters and processors.
package utils
