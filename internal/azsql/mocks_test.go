package azsql

import (
	"context"
	"errors"
	"time"
)

// fakeTokenProvider counts acquisitions and can be scripted to fail.
type fakeTokenProvider struct {
	token string
	err   error
	calls int
}

func (p *fakeTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	p.calls++
	if p.err != nil {
		return "", time.Time{}, p.err
	}
	return p.token, time.Now().Add(time.Hour), nil
}

func (p *fakeTokenProvider) String() string { return "fakeTokenProvider" }

// fakeDriver replays a scripted sequence of connect outcomes. A nil entry
// means success.
type fakeDriver struct {
	script   []error
	attempts int
	attrs    []PreSessionAttributes
}

func (d *fakeDriver) Connect(ctx context.Context, dsn string, attrs PreSessionAttributes) (Conn, error) {
	d.attempts++
	d.attrs = append(d.attrs, attrs)
	if d.attempts <= len(d.script) && d.script[d.attempts-1] != nil {
		return nil, d.script[d.attempts-1]
	}
	return &fakeConn{}, nil
}

func transientErr(msg string) error {
	return &TransportError{Kind: KindTransient, Err: errors.New(msg)}
}

// fakeClock drives the manager's injected time source. Sleeps advance the
// clock instead of blocking.
type fakeClock struct {
	current time.Time
	sleeps  []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.current = c.current.Add(d)
	return ctx.Err()
}

// withFakes rewires a manager onto the fake clock.
func withFakes(m *ConnectionManager, clock *fakeClock) *ConnectionManager {
	m.now = clock.now
	m.sleep = clock.sleep
	return m
}

// fakeConn records the transactions opened on it. makeTx, when set,
// customizes each transaction handed out.
type fakeConn struct {
	makeTx func() *fakeTx
	txs    []*fakeTx
	closed bool
}

func (c *fakeConn) Begin(ctx context.Context) (Tx, error) {
	tx := &fakeTx{}
	if c.makeTx != nil {
		tx = c.makeTx()
	}
	c.txs = append(c.txs, tx)
	return tx, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// fakeTx records executed statements and outcomes.
type fakeTx struct {
	execs      []execCall
	queries    []string
	execErr    error
	failOn     int // 1-based Exec call index at which execErr fires; 0 = every call
	queryErr   error
	commitErr  error
	committed  bool
	rolledBack bool
	results    *fakeRows
}

type execCall struct {
	query string
	args  []any
}

func (t *fakeTx) Exec(ctx context.Context, query string, args ...any) error {
	t.execs = append(t.execs, execCall{query: query, args: args})
	if t.execErr != nil && (t.failOn == 0 || len(t.execs) == t.failOn) {
		return t.execErr
	}
	return nil
}

func (t *fakeTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	t.queries = append(t.queries, query)
	if t.queryErr != nil {
		return nil, t.queryErr
	}
	if t.results == nil {
		t.results = &fakeRows{columns: []string{}}
	}
	return t.results, nil
}

func (t *fakeTx) Commit() error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

// fakeRows serves a fixed result set.
type fakeRows struct {
	columns []string
	rows    [][]any
	pos     int
	closed  bool
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	for i := range dest {
		*(dest[i].(*any)) = row[i]
	}
	return nil
}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

// scriptedConn fails Begin, for transaction-start failure paths.
type scriptedConn struct {
	beginErr error
}

func (c *scriptedConn) Begin(ctx context.Context) (Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return &fakeTx{}, nil
}

func (c *scriptedConn) Close() error { return nil }
