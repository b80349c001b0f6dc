package sql

import (
	"embed"
)

// Migrations holds the DDL applied by `clinsum db migrate`. Table names are
// unqualified; they resolve against the search_path set by the caller.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/last_import.sql
var LastImport string

//go:embed queries/record_import.sql
var RecordImport string
