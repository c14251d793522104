//go:build cgo

package sqlitedriver

import (
	_ "github.com/mutecomm/go-sqlcipher/v4" // registers "sqlite3" with SQLCipher support
)

// EncryptionSupported reports whether the registered "sqlite3" driver
// accepts PRAGMA key. True for the CGO SQLCipher build, which both the
// session store and the evals store open through.
const EncryptionSupported = true
