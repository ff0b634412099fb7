package migrations

import "embed"

// FS миграции goose, вшитые в бинарник
//
//go:embed *.sql
var FS embed.FS
