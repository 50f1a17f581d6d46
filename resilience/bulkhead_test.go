package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func mustBulkhead(t *testing.T, cfg BulkheadConfig) *Bulkhead {
	t.Helper()
	b, err := NewBulkhead(cfg)
	if err != nil {
		t.Fatalf("NewBulkhead failed: %v", err)
	}
	return b
}

func TestBulkhead_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewBulkhead(BulkheadConfig{Name: "t", MaxConcurrent: 0}); err == nil {
		t.Error("expected construction error")
	}
}

func TestBulkhead_AllowsWithinLimit(t *testing.T) {
	b := mustBulkhead(t, BulkheadConfig{Name: "test", MaxConcurrent: 2})

	err := b.Do(context.Background(), func() error { return nil })
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	b := mustBulkhead(t, BulkheadConfig{Name: "test", MaxConcurrent: 1})

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = b.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started

	err := b.Do(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}

	close(release)
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := mustBulkhead(t, BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		MaxWait:       200 * time.Millisecond,
	})

	started := make(chan struct{})
	go func() {
		_ = b.Do(context.Background(), func() error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			return nil
		})
	}()

	<-started

	err := b.Do(context.Background(), func() error { return nil })
	if err != nil {
		t.Errorf("expected slot after wait, got %v", err)
	}
}

func TestBulkhead_OnRejectCallback(t *testing.T) {
	var mu sync.Mutex
	rejects := 0

	b := mustBulkhead(t, BulkheadConfig{
		Name:          "test",
		MaxConcurrent: 1,
		OnReject: func(name string) {
			mu.Lock()
			rejects++
			mu.Unlock()
		},
	})

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = b.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	_ = b.Do(context.Background(), func() error { return nil })
	close(release)

	mu.Lock()
	defer mu.Unlock()
	if rejects != 1 {
		t.Errorf("expected 1 reject callback, got %d", rejects)
	}
}

func TestBulkhead_Accounting(t *testing.T) {
	b := mustBulkhead(t, BulkheadConfig{Name: "test", MaxConcurrent: 3})

	if b.Available() != 3 || b.InUse() != 0 {
		t.Errorf("expected 3 available, 0 in use; got %d/%d", b.Available(), b.InUse())
	}

	done := make(chan struct{})
	inside := make(chan struct{})
	go func() {
		_ = b.Do(context.Background(), func() error {
			close(inside)
			<-done
			return nil
		})
	}()
	<-inside

	if b.InUse() != 1 {
		t.Errorf("expected 1 in use, got %d", b.InUse())
	}
	close(done)
}
