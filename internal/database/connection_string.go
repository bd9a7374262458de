package database

import (
	"net/url"
	"strings"
)

// buildConnectionString generates a SQLite connection string from options.
// The modernc driver only understands URI-level parameters here; PRAGMA-level
// settings are applied separately after the connection is established.
func (opts *SQLiteOptions) buildConnectionString() string {
	params := url.Values{}

	if opts.Mode != "" {
		params.Set("mode", opts.Mode)
	}
	if opts.Cache != "" {
		params.Set("cache", string(opts.Cache))
	}
	if opts.Immutable {
		params.Set("immutable", "true")
	}
	if opts.TxLock != "" {
		params.Set("_txlock", opts.TxLock)
	}

	connStr := opts.Path
	if !strings.HasPrefix(connStr, "file:") {
		connStr = "file:" + connStr
	}
	if encoded := params.Encode(); encoded != "" {
		connStr += "?" + encoded
	}

	return connStr
}
