package configlibsql

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const Memory = ":memory:"

// IsRemote reports whether dsn points at a libsql server rather than a
// local sqlite file.
func IsRemote(dsn string) bool {
	for _, prefix := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(dsn, prefix) {
			return true
		}
	}
	return false
}

// Open opens a local sqlite file (created when missing), an in-memory
// database or a libsql url.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if IsRemote(dsn) {
		return sql.Open("libsql", dsn)
	}

	if dsn != Memory {
		_, statErr := os.Stat(dsn)
		if os.IsNotExist(statErr) {
			f, err := os.Create(dsn)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	// an in-memory database also lives and dies with its connection.
	db.SetMaxOpenConns(1)
	if dsn == Memory {
		return db, nil
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
