package database

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// fakeSession satisfies mongo.Session by embedding the interface and
// overriding the lifecycle methods the Coordinator touches.
type fakeSession struct {
	mongo.Session
	started   int
	committed int
	aborted   int
	ended     int

	startErr  error
	commitErr error
}

func (s *fakeSession) StartTransaction(opts ...*options.TransactionOptions) error {
	s.started++
	return s.startErr
}

func (s *fakeSession) AbortTransaction(ctx context.Context) error {
	s.aborted++
	return nil
}

func (s *fakeSession) CommitTransaction(ctx context.Context) error {
	s.committed++
	return s.commitErr
}

func (s *fakeSession) EndSession(ctx context.Context) {
	s.ended++
}

type fakeStarter struct {
	readyErr error
	startErr error
	sess     *fakeSession
}

func (f *fakeStarter) Ready(ctx context.Context) error { return f.readyErr }

func (f *fakeStarter) StartSession(ctx context.Context) (mongo.Session, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.sess, nil
}

func TestCoordinatorCommitsAllOps(t *testing.T) {
	sess := &fakeSession{}
	c := NewCoordinator(&fakeStarter{sess: sess}, zap.NewNop())

	var order []int
	err := c.Run(context.Background(),
		func(ctx context.Context) error {
			if mongo.SessionFromContext(ctx) == nil {
				t.Error("op 0 did not receive a session context")
			}
			order = append(order, 0)
			return nil
		},
		func(ctx context.Context) error {
			order = append(order, 1)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("expected commit, got %v", err)
	}
	if len(order) != 2 || order[0] != 0 || order[1] != 1 {
		t.Errorf("ops ran out of order: %v", order)
	}
	if sess.started != 1 || sess.committed != 1 || sess.aborted != 0 {
		t.Errorf("lifecycle mismatch: %+v", sess)
	}
	if sess.ended != 1 {
		t.Errorf("session must end exactly once, ended %d times", sess.ended)
	}
}

func TestCoordinatorAbortsOnOpFailure(t *testing.T) {
	sess := &fakeSession{}
	c := NewCoordinator(&fakeStarter{sess: sess}, zap.NewNop())

	boom := &ConflictError{Reason: "appointment already booked"}
	firstRan := false
	err := c.Run(context.Background(),
		func(ctx context.Context) error {
			firstRan = true
			return nil
		},
		func(ctx context.Context) error {
			return boom
		},
	)

	var abort *TransactionAbortError
	if !errors.As(err, &abort) {
		t.Fatalf("expected TransactionAbortError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("triggering error must be reachable through the wrapper")
	}
	if !IsConflict(err) {
		t.Error("classification must survive the abort wrapper")
	}
	if !firstRan {
		t.Error("first op should have run before the failure")
	}
	if sess.aborted != 1 || sess.committed != 0 {
		t.Errorf("expected abort without commit: %+v", sess)
	}
	if sess.ended != 1 {
		t.Errorf("session must end exactly once, ended %d times", sess.ended)
	}
}

func TestCoordinatorCommitFailureDoesNotDoubleAbort(t *testing.T) {
	sess := &fakeSession{commitErr: errors.New("commit failed")}
	c := NewCoordinator(&fakeStarter{sess: sess}, zap.NewNop())

	err := c.Run(context.Background(), func(ctx context.Context) error { return nil })

	var abort *TransactionAbortError
	if !errors.As(err, &abort) {
		t.Fatalf("expected TransactionAbortError, got %v", err)
	}
	if sess.aborted != 0 {
		t.Errorf("a failed commit must not be followed by an abort, aborted %d times", sess.aborted)
	}
	if sess.ended != 1 {
		t.Errorf("session must end exactly once, ended %d times", sess.ended)
	}
}

func TestCoordinatorReadyFailureShortCircuits(t *testing.T) {
	down := &ConnectionError{Op: "ping", Err: errors.New("down")}
	sess := &fakeSession{}
	c := NewCoordinator(&fakeStarter{sess: sess, readyErr: down}, zap.NewNop())

	ran := false
	err := c.Run(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, down) {
		t.Fatalf("expected readiness error, got %v", err)
	}
	if ran || sess.started != 0 {
		t.Error("no op or transaction may run while the connection is down")
	}
}

func TestCoordinatorSessionStartFailure(t *testing.T) {
	c := NewCoordinator(&fakeStarter{startErr: errors.New("no sessions")}, zap.NewNop())
	err := c.Run(context.Background(), func(ctx context.Context) error { return nil })
	if !IsConnection(err) {
		t.Errorf("expected ConnectionError, got %v", err)
	}
}

func TestRunSequentialStopsAtFirstFailure(t *testing.T) {
	sess := &fakeSession{}
	c := NewCoordinator(&fakeStarter{sess: sess}, zap.NewNop())

	boom := errors.New("write failed")
	var ran []int
	err := c.RunSequential(context.Background(),
		func(ctx context.Context) error { ran = append(ran, 0); return nil },
		func(ctx context.Context) error { ran = append(ran, 1); return boom },
		func(ctx context.Context) error { ran = append(ran, 2); return nil },
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped step error, got %v", err)
	}
	if len(ran) != 2 {
		t.Errorf("execution should stop at the failing step, ran %v", ran)
	}
	if sess.started != 0 {
		t.Error("sequential mode must not open a transaction")
	}
}
