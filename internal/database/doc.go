// Package database persists link preview records and managed attachment
// metadata in SQLite.
//
// The schema has two tables: previews (one row per persisted link preview)
// and attachments (one row per managed image payload, carrying its download
// state and, once downloaded, its mime type, dimensions, and on-disk path).
package database
