// Package logger builds the Zap logger shared by the server and the CLI.
//
// # Configuration
//
// The log section of the configuration selects the level (debug, info, warn,
// error) and the encoding. A debug level switches to Zap's development preset;
// an unknown level is rejected by New instead of silently falling back.
//
// # Request Correlation
//
// WithRayID returns a child logger carrying the ray id stored by the rayid
// middleware, so the request log line, the reconciliation warnings and any
// processor failure of one request share the same ray_id field.
//
// # Usage
//
//	logg, err := logger.New(&cfg.Log)
//	if err != nil {
//	    return err
//	}
//
//	l := logger.WithRayID(logg, c)
//	l.Warn("Metadata update finished with errors", zap.Error(err))
package logger
