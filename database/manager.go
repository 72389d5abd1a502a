package database

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Manager owns the single live MongoDB client for the process. All
// repositories borrow the connection through it; nothing else dials the
// store. Concurrent callers of Connect share one in-flight attempt.
type Manager struct {
	uri            string
	dbName         string
	connectTimeout time.Duration
	logger         *zap.Logger

	mu           sync.Mutex
	client       *mongo.Client
	ready        bool
	attempt      *connectAttempt
	attemptStart time.Time
}

// connectAttempt is the shared result of one dial. Every caller that
// arrives while it is in flight waits on done and observes the same
// client or the same error.
type connectAttempt struct {
	done   chan struct{}
	client *mongo.Client
	err    error
}

// NewManager builds a Manager. No connection is made until the first
// Connect call.
func NewManager(uri, dbName string, connectTimeout time.Duration, logger *zap.Logger) *Manager {
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	return &Manager{
		uri:            uri,
		dbName:         dbName,
		connectTimeout: connectTimeout,
		logger:         logger,
	}
}

// Connect returns the live client, establishing it on first use. If an
// attempt is already in flight the caller awaits that attempt instead
// of starting a second one. An attempt stuck in "connecting" beyond the
// configured timeout is abandoned and a fresh one started.
func (m *Manager) Connect(ctx context.Context) (*mongo.Client, error) {
	m.mu.Lock()
	if m.client != nil && m.ready {
		client := m.client
		m.mu.Unlock()
		return client, nil
	}

	at := m.attempt
	if at != nil && time.Since(m.attemptStart) > m.connectTimeout {
		m.logger.Warn("abandoning stuck connection attempt",
			zap.Duration("age", time.Since(m.attemptStart)))
		m.attempt = nil
		at = nil
	}
	if at == nil {
		at = &connectAttempt{done: make(chan struct{})}
		m.attempt = at
		m.attemptStart = time.Now()
		go m.dial(at)
	}
	m.mu.Unlock()

	select {
	case <-at.done:
		return at.client, at.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dial performs the actual connection and publishes the result on the
// attempt. It registers the pool monitor here, so state listeners are
// attached exactly once per client.
func (m *Manager) dial(at *connectAttempt) {
	ctx, cancel := context.WithTimeout(context.Background(), m.connectTimeout)
	defer cancel()

	monitor := &event.PoolMonitor{
		Event: func(evt *event.PoolEvent) {
			if evt.Type == event.PoolCleared {
				m.markNotReady()
			}
		},
	}
	opts := options.Client().
		ApplyURI(m.uri).
		SetServerSelectionTimeout(10 * time.Second).
		SetPoolMonitor(monitor)

	client, err := mongo.Connect(ctx, opts)
	if err == nil {
		if perr := client.Ping(ctx, readpref.Primary()); perr != nil {
			_ = client.Disconnect(ctx)
			client, err = nil, perr
		}
	}

	m.mu.Lock()
	current := m.attempt == at
	if current {
		m.attempt = nil
		if err == nil {
			if old := m.client; old != nil && old != client {
				go func() {
					dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer dcancel()
					_ = old.Disconnect(dctx)
				}()
			}
			m.client = client
			m.ready = true
		} else {
			// Clear state so a later Connect can retry.
			m.client = nil
			m.ready = false
		}
	}
	m.mu.Unlock()

	if !current && err == nil {
		// This attempt was abandoned as stuck; its client must not leak.
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		_ = client.Disconnect(dctx)
		client, err = nil, context.DeadlineExceeded
	}

	if err != nil {
		m.logger.Error("mongo connection attempt failed", zap.Error(err))
	} else {
		m.logger.Info("connected to MongoDB", zap.String("database", m.dbName))
	}

	at.client = client
	at.err = err
	close(at.done)
}

func (m *Manager) markNotReady() {
	m.mu.Lock()
	m.ready = false
	m.mu.Unlock()
}

// Ready verifies the connection is usable, reconnecting if necessary.
func (m *Manager) Ready(ctx context.Context) error {
	client, err := m.Connect(ctx)
	if err != nil {
		return &ConnectionError{Op: "connect", Err: err}
	}
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pctx, readpref.Primary()); err != nil {
		m.markNotReady()
		return &ConnectionError{Op: "ping", Err: err}
	}
	return nil
}

// ForceReconnect closes the current client and establishes a fresh one.
// The close completes before the new dial begins.
func (m *Manager) ForceReconnect(ctx context.Context) error {
	m.mu.Lock()
	old := m.client
	m.client = nil
	m.ready = false
	m.mu.Unlock()

	if old != nil {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = old.Disconnect(dctx)
		cancel()
	}
	_, err := m.Connect(ctx)
	return err
}

// Database returns a handle to the configured database.
func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := m.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(m.dbName), nil
}

// StartSession opens a store-native session for transactional work.
func (m *Manager) StartSession(ctx context.Context) (mongo.Session, error) {
	client, err := m.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.StartSession()
}

// Shutdown tears the connection down at process exit.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.ready = false
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
