package database

// SynchronousMode represents the available synchronous settings for SQLite
type SynchronousMode string

const (
	SynchronousOff    SynchronousMode = "OFF"
	SynchronousNormal SynchronousMode = "NORMAL"
	SynchronousFull   SynchronousMode = "FULL"
	SynchronousExtra  SynchronousMode = "EXTRA"
)

// JournalMode represents the available journal modes for SQLite
type JournalMode string

const (
	JournalDelete   JournalMode = "DELETE"
	JournalTruncate JournalMode = "TRUNCATE"
	JournalPersist  JournalMode = "PERSIST"
	JournalMemory   JournalMode = "MEMORY"
	JournalWAL      JournalMode = "WAL"
	JournalOff      JournalMode = "OFF"
)

// LockingMode represents the available locking modes for SQLite
type LockingMode string

const (
	LockingNormal    LockingMode = "NORMAL"
	LockingExclusive LockingMode = "EXCLUSIVE"
)

// CacheMode represents the available cache modes for SQLite
type CacheMode string

const (
	CacheShared  CacheMode = "shared"
	CachePrivate CacheMode = "private"
)

// SQLiteOptions contains configuration options for the SQLite connection.
// Only Mode, Cache, Immutable and TxLock are honored in the DSN; everything
// else is applied with explicit PRAGMA statements after the connection opens.
type SQLiteOptions struct {
	// Path to the SQLite database file
	Path string

	// Core Options
	Mode        string          // ro, rw, rwc, memory
	Journal     JournalMode     // journal_mode: DELETE, TRUNCATE, PERSIST, MEMORY, WAL, OFF
	ForeignKeys bool            // foreign_keys pragma
	BusyTimeout int             // busy_timeout pragma (milliseconds)
	CacheSize   int             // cache_size pragma (in KB, negative for number of pages)
	Synchronous SynchronousMode // synchronous: OFF, NORMAL, FULL, EXTRA
	Cache       CacheMode       // shared, private
	Immutable   bool            // immutable=true/false

	// Transaction & Locking
	LockingMode LockingMode // locking_mode: NORMAL, EXCLUSIVE
	TxLock      string      // _txlock: immediate, deferred, exclusive

	// Advanced Options
	AutoVacuum             string // auto_vacuum: none, full, incremental
	CaseSensitiveLike      bool   // case_sensitive_like pragma
	DeferForeignKeys       bool   // defer_foreign_keys pragma
	IgnoreCheckConstraints bool   // ignore_check_constraints pragma
	QueryOnly              bool   // query_only pragma
	RecursiveTriggers      bool   // recursive_triggers pragma
	SecureDelete           string // secure_delete: boolean or "FAST"
	WritableSchema         bool   // writable_schema pragma
}

// NewDefaultOptions creates SQLiteOptions with recommended defaults
func NewDefaultOptions(path string) SQLiteOptions {
	return SQLiteOptions{
		Path:        path,
		Mode:        "rwc",
		Journal:     JournalWAL, // WAL is recommended for better concurrency
		ForeignKeys: true,
		BusyTimeout: 5000,
		CacheSize:   2000,
		Synchronous: SynchronousNormal,
		Cache:       CachePrivate,
	}
}
