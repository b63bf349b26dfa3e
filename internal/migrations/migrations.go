// Package migrations хранит SQL-миграции схемы, встроенные в бинарник.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
