// Package middleware groups the Fiber middleware mounted by the start command.
//
//   - rayid tags every request with an X-Ray-ID, reusing a valid incoming one.
//   - auth requires the X-API-Key header when server.api_key is set.
//
// The ray id handler runs first so rejected requests are still traceable.
package middleware
