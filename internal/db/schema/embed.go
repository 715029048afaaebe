package schema

import "embed"

// FS holds the create-if-absent DDL for each supported driver.
//
//go:embed *.sql
var FS embed.FS
