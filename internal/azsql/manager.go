package azsql

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/crestline-data/datamove/internal/logging"
	"github.com/crestline-data/datamove/pkg/datamove"
)

// AuthMethod selects how the connection authenticates. It is a pure
// function of credential presence, derived once at construction.
type AuthMethod int

const (
	// AuthPasswordless exchanges ambient identity for a short-lived
	// access token delivered as a pre-session attribute.
	AuthPasswordless AuthMethod = iota

	// AuthUsernamePassword sends static credentials in the connection
	// string.
	AuthUsernamePassword
)

func (m AuthMethod) String() string {
	if m == AuthUsernamePassword {
		return "username/password"
	}
	return "passwordless"
}

// Config carries the construction parameters for a ConnectionManager.
// Username and Password are mutually dependent: unless both are set the
// manager uses passwordless authentication.
type Config struct {
	Server   string
	Database string
	Schema   string
	Username string
	Password string

	// AttemptLimit bounds the connect retry loop; the attempt counter is
	// compared inclusively, so a limit of N permits N+1 attempts.
	// Zero means datamove.DefaultAttemptLimit.
	AttemptLimit int

	// AttemptDelay is the minimum spacing between the start of a failed
	// attempt and the start of the next. Zero means
	// datamove.DefaultAttemptDelay.
	AttemptDelay time.Duration
}

// ConnectionManager owns one Azure SQL target for the life of the process.
// It is not safe for concurrent use; the design assumes exactly one logical
// owner using it serially. There is no teardown operation: process exit is
// the implicit boundary.
type ConnectionManager struct {
	server       string
	database     string
	schema       string
	connString   string
	authMethod   AuthMethod
	attemptLimit int
	attemptDelay time.Duration

	driver Driver
	tokens TokenProvider
	log    datamove.Logger

	// token caches the encoded access-token attribute. Acquired lazily
	// once, reused across attempts and across Connect calls.
	token PreSessionAttributes

	// attemptCount is monotonic for the lifetime of the manager. It is
	// deliberately never reset: a second Connect call after a failed one
	// continues counting rather than restarting from zero.
	attemptCount       int
	initialAttemptTime time.Time
	lastAttemptTime    time.Time

	handle Conn

	// Injectable clock for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewConnectionManager creates a manager for one database target.
// driver must not be nil. tokens may be nil, in which case the default
// Azure credential chain is constructed on first passwordless connect.
// log may be nil for silent operation.
func NewConnectionManager(cfg Config, driver Driver, tokens TokenProvider, log datamove.Logger) *ConnectionManager {
	if cfg.AttemptLimit <= 0 {
		cfg.AttemptLimit = datamove.DefaultAttemptLimit
	}
	if cfg.AttemptDelay <= 0 {
		cfg.AttemptDelay = datamove.DefaultAttemptDelay
	}
	if log == nil {
		log = logging.NewNullLogger()
	}

	m := &ConnectionManager{
		server:       cfg.Server,
		database:     cfg.Database,
		schema:       cfg.Schema,
		authMethod:   deriveAuthMethod(cfg.Username, cfg.Password),
		attemptLimit: cfg.AttemptLimit,
		attemptDelay: cfg.AttemptDelay,
		driver:       driver,
		tokens:       tokens,
		log:          log,
		now:          time.Now,
		sleep:        sleepContext,
	}
	m.connString = buildConnString(cfg.Server, cfg.Database, cfg.Username, cfg.Password, m.authMethod)
	return m
}

// deriveAuthMethod picks the auth method from credential presence. A lone
// username or a lone password does not constitute a credential pair and
// falls back to passwordless.
func deriveAuthMethod(username, password string) AuthMethod {
	if username != "" && password != "" {
		return AuthUsernamePassword
	}
	return AuthPasswordless
}

// buildConnString assembles the sqlserver URL for the target.
func buildConnString(server, database, username, password string, method AuthMethod) string {
	query := url.Values{}
	query.Set("database", database)
	query.Set("encrypt", "true")

	u := url.URL{
		Scheme: "sqlserver",
		Host:   fmt.Sprintf("%s:1433", server),
	}
	if method == AuthUsernamePassword {
		u.User = url.UserPassword(username, password)
		query.Set("TrustServerCertificate", "false")
	}
	u.RawQuery = query.Encode()
	return u.String()
}

// AuthMethod returns the method derived at construction.
func (m *ConnectionManager) AuthMethod() AuthMethod { return m.authMethod }

// AttemptCount returns the number of transport attempts made so far.
func (m *ConnectionManager) AttemptCount() int { return m.attemptCount }

// Connect establishes the connection, retrying transient transport
// failures up to the attempt limit with a fixed delay between attempts.
// Once a connection exists, Connect returns it without touching the
// network. Token acquisition failures are fatal and never retried.
func (m *ConnectionManager) Connect(ctx context.Context) (Conn, error) {
	m.log.Verbose("starting connection process for %s/%s", m.server, m.database)
	if m.handle != nil {
		return m.handle, nil
	}

	if m.authMethod == AuthPasswordless && m.token == nil {
		if err := m.authenticatePasswordless(ctx); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for m.handle == nil && m.attemptCount <= m.attemptLimit {
		err := m.connectionAttempt(ctx)
		if err == nil {
			elapsed := m.now().Sub(m.initialAttemptTime)
			m.log.Info("connected to %s on attempt #%d", m.server, m.attemptCount)
			m.log.Verbose("total elapsed since initial attempt: %s", elapsed.Round(time.Second))
			return m.handle, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
		if err := m.connectionFailure(ctx, err); err != nil {
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("unable to connect to %s after %d attempts: %v: %w",
			m.server, m.attemptCount, lastErr, datamove.ErrConnectionFailed)
	}
	return nil, fmt.Errorf("unable to connect to %s, retry budget exhausted: %w",
		m.server, datamove.ErrConnectionFailed)
}

// authenticatePasswordless acquires a token from the credential provider
// and caches it in pre-session attribute form.
func (m *ConnectionManager) authenticatePasswordless(ctx context.Context) error {
	if m.tokens == nil {
		provider, err := NewDefaultCredentialProvider()
		if err != nil {
			return fmt.Errorf("%v: %w", err, datamove.ErrAuthenticationFailed)
		}
		m.tokens = provider
	}

	m.log.Info("acquiring access token via %s", m.tokens)
	token, expiresOn, err := m.tokens.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("%v: %w", err, datamove.ErrAuthenticationFailed)
	}
	m.log.Verbose("token acquired, expires %s", expiresOn.Format(time.RFC3339))
	m.token = tokenAttributes(token)
	return nil
}

// connectionAttempt performs one transport dial, updating attempt
// bookkeeping. The initial attempt time is recorded only for diagnostic
// elapsed-time reporting, not for retry math.
func (m *ConnectionManager) connectionAttempt(ctx context.Context) error {
	start := m.now()
	if m.initialAttemptTime.IsZero() {
		m.initialAttemptTime = start
	}
	m.lastAttemptTime = start
	m.attemptCount++
	m.log.Info("connection attempt #%d (%s)", m.attemptCount, m.authMethod)

	var attrs PreSessionAttributes
	if m.authMethod == AuthPasswordless {
		attrs = m.token
	}
	conn, err := m.driver.Connect(ctx, m.connString, attrs)
	if err != nil {
		return err
	}
	m.handle = conn
	return nil
}

// connectionFailure logs the error and enforces the minimum spacing
// between attempts: if less than attemptDelay has passed since this
// failure, it blocks until the deadline. Fixed delay, not exponential.
func (m *ConnectionManager) connectionFailure(ctx context.Context, cause error) error {
	failureTime := m.now()
	deadline := failureTime.Add(m.attemptDelay)
	m.log.Info("connection attempt failed: %v", cause)
	m.log.Verbose("%s elapsed since attempt start, %s since initial attempt",
		failureTime.Sub(m.lastAttemptTime).Round(time.Second),
		failureTime.Sub(m.initialAttemptTime).Round(time.Second))

	if wait := deadline.Sub(m.now()); wait > 0 {
		m.log.Info("waiting %s before re-attempting connection", wait.Round(time.Second))
		return m.sleep(ctx, wait)
	}
	return nil
}

// sleepContext blocks for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
