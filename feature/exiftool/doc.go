// Package exiftool provides a metadata.Processor backed by the exiftool CLI.
//
// Reads run "exiftool -json -G [-Tag ...] file" against a staged copy of the
// blob. Returned keys carry their group prefix (e.g. "EXIF:Model") unless
// ignorePrefix is set. Date strings are parsed into time.Time.
//
// Writes run "exiftool -overwrite_original -Tag=Value ... file" on a staged
// copy and return a new blob with the rewritten bytes. RFC3339 values are
// converted into the exiftool date format.
//
// The executable is resolved through Config.Command, and every invocation is
// bounded by Config.TimeoutSeconds.
package exiftool
