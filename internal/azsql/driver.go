package azsql

import "context"

// PreSessionAttributes are connection options delivered to the driver before
// session establishment. The only attribute used here is the access token
// (see EncodeAccessToken); the map form mirrors the driver-level contract.
type PreSessionAttributes map[uint16][]byte

// Driver opens transport-level connections. Implementations must wrap
// errors in *TransportError so the connect loop can classify them.
type Driver interface {
	// Connect dials the server described by dsn. attrs may be nil; when
	// present it carries pre-session attributes such as the access token.
	Connect(ctx context.Context, dsn string, attrs PreSessionAttributes) (Conn, error)
}

// Conn is a live transport connection.
type Conn interface {
	// Begin starts a transaction. Every Execute call runs in its own.
	Begin(ctx context.Context) (Tx, error)

	// Close releases the connection. The manager never calls this on its
	// held handle; it exists for drivers to clean up failed dials.
	Close() error
}

// Tx is a single transaction on a Conn.
type Tx interface {
	Exec(ctx context.Context, query string, args ...any) error
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Commit() error
	Rollback() error
}

// Rows is a forward-only result cursor with column metadata.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}
