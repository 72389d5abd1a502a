package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Op is one write step of a multi-document unit. Inside Coordinator.Run
// the context passed to it is a session context, so collection calls
// made with it join the transaction.
type Op func(ctx context.Context) error

// TxRunner is the transactional surface services depend on. Tests
// substitute an in-memory runner.
type TxRunner interface {
	Run(ctx context.Context, ops ...Op) error
	RunSequential(ctx context.Context, ops ...Op) error
}

// SessionStarter is the slice of Manager the Coordinator needs.
type SessionStarter interface {
	Ready(ctx context.Context) error
	StartSession(ctx context.Context) (mongo.Session, error)
}

// Coordinator executes a sequence of write operations as a single
// atomic unit: commit-all or abort-all.
type Coordinator struct {
	conn   SessionStarter
	logger *zap.Logger
}

func NewCoordinator(conn SessionStarter, logger *zap.Logger) *Coordinator {
	return &Coordinator{conn: conn, logger: logger}
}

// Run executes ops inside one store-native transaction. On the first
// failure the transaction is aborted, all prior writes in the session
// are discarded, and the triggering error is returned wrapped in a
// TransactionAbortError. The session ends exactly once on every path.
func (c *Coordinator) Run(ctx context.Context, ops ...Op) error {
	if err := c.conn.Ready(ctx); err != nil {
		return err
	}
	sess, err := c.conn.StartSession(ctx)
	if err != nil {
		return &ConnectionError{Op: "start session", Err: err}
	}
	defer sess.EndSession(ctx)

	if err := sess.StartTransaction(); err != nil {
		return &ConnectionError{Op: "start transaction", Err: err}
	}

	sc := mongo.NewSessionContext(ctx, sess)
	for _, op := range ops {
		if err := op(sc); err != nil {
			// The abort's own error is irrelevant to the caller; the
			// triggering error is what gets reported.
			_ = sess.AbortTransaction(sc)
			return &TransactionAbortError{Err: err}
		}
	}
	if err := sess.CommitTransaction(sc); err != nil {
		return &TransactionAbortError{Err: Classify("transaction commit", "", err)}
	}
	return nil
}

// RunSequential executes ops in order without a transaction, for
// deployments where multi-document transactions are unavailable
// (standalone mongod). All-or-nothing does not hold here: a failure
// leaves earlier writes in place, and the step index in the returned
// error says how far execution got.
func (c *Coordinator) RunSequential(ctx context.Context, ops ...Op) error {
	if err := c.conn.Ready(ctx); err != nil {
		return err
	}
	c.logger.Warn("running multi-document write without transaction; atomicity is best-effort")
	for i, op := range ops {
		if err := op(ctx); err != nil {
			return fmt.Errorf("sequential write step %d failed: %w", i, err)
		}
	}
	return nil
}
