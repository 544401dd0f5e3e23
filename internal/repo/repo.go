// Package repo stores users and links in SQLite for the local backend.
package repo

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

const dialect = "sqlite3"

func executor(db goqu.SQLDatabase) *goqu.Database {
	return goqu.New(dialect, db)
}
