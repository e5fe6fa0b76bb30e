// Package db provides the embedded database schema for the postgres slot
// backend.
package db

import _ "embed"

// Schema contains the DDL statements for the slot table.
//
//go:embed migrations/001_schema.sql
var Schema string
