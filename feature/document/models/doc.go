// Package models defines the persisted document model and API payloads of
// the documents feature.
//
// Fields and BlobRefs are stored as JSON columns and implement
// driver.Valuer and sql.Scanner so that GORM can read and write them on
// both MySQL and SQLite.
package models
