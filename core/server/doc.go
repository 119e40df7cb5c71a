// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines
// the configuration structure and the derived values used to build the Fiber
// app: the listen address, the request body limit (uploads included) and the
// graceful shutdown budget.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by cmd/start.go to configure Fiber.
package server
