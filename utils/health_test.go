package utils

import (
	"context"
	"errors"
	"testing"
)

type fakeProber struct {
	err   error
	calls int
}

func (f *fakeProber) Ready(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestCheckHealthReflectsStoreReadiness(t *testing.T) {
	prober := &fakeProber{}
	status := checkHealth(context.Background(), nil, prober)
	if !status.Mongo {
		t.Error("a ready store should report healthy")
	}
	if prober.calls != 1 {
		t.Errorf("expected one readiness probe, got %d", prober.calls)
	}
	if len(status.Redis) != 0 {
		t.Errorf("no redis clients means no redis entries, got %v", status.Redis)
	}
	if status.CheckedAt.IsZero() {
		t.Error("snapshot should be timestamped")
	}

	status = checkHealth(context.Background(), nil, &fakeProber{err: errors.New("down")})
	if status.Mongo {
		t.Error("an unready store should report unhealthy")
	}
}
