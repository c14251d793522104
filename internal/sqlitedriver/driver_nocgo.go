//go:build !cgo

package sqlitedriver

import (
	"database/sql"

	"modernc.org/sqlite"
)

// The pure-Go driver registers itself as "sqlite", so rebind it under
// the "sqlite3" name the stores open.
func init() {
	sql.Register("sqlite3", &sqlite.Driver{})
}

// EncryptionSupported reports whether the registered "sqlite3" driver
// accepts PRAGMA key. False for the pure-Go fallback build.
const EncryptionSupported = false
