package shutdownqueue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// resetQueue clears the global queue between tests.
func resetQueue(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		mu.Lock()

		tasks = nil
		closed = false

		mu.Unlock()
	})
}

//nolint:paralleltest
func TestAddNilTaskIsNoop(t *testing.T) {
	resetQueue(t)

	Add(nil)

	err := Shutdown(t.Context())
	if err != nil {
		t.Fatalf("expected nil after adding nil task; got %v", err)
	}
}

//nolint:paralleltest
func TestLIFOOrder(t *testing.T) {
	resetQueue(t)

	var (
		orderMu sync.Mutex
		order   []int
	)

	makeTask := func(n int) Task {
		return func(ctx context.Context) error {
			orderMu.Lock()

			order = append(order, n)

			orderMu.Unlock()

			return nil
		}
	}

	for i := 1; i <= 3; i++ {
		Add(makeTask(i))
	}

	err := Shutdown(t.Context())
	if err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}

	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("order len mismatch: got %v, want %v", order, want)
	}

	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, order, want)
		}
	}
}

//nolint:paralleltest
func TestPanicRecoveryIncludedAndContinues(t *testing.T) {
	resetQueue(t)

	var ranAfterPanic atomic.Bool

	Add(func(ctx context.Context) error { return nil })
	Add(func(ctx context.Context) error { panic("boom") })
	Add(func(ctx context.Context) error {
		ranAfterPanic.Store(true)

		return nil
	})

	shErr := Shutdown(t.Context())
	if shErr == nil {
		t.Fatalf("expected aggregated error with panic; got nil")
	}

	if !strings.Contains(shErr.Error(), "panic in shutdown task: boom") {
		t.Fatalf("expected panic message in error; got: %q", shErr.Error())
	}

	if !ranAfterPanic.Load() {
		t.Fatalf("expected tasks after the panic to still run")
	}
}

//nolint:paralleltest
func TestIdempotentAndRunsOnce(t *testing.T) {
	resetQueue(t)

	var count atomic.Int32

	Add(func(ctx context.Context) error {
		count.Add(1)

		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := Shutdown(ctx)
	if err != nil {
		t.Fatalf("Shutdown #1 error: %v", err)
	}

	if got := count.Load(); got != 1 {
		t.Fatalf("expected count=1 after first shutdown; got %d", got)
	}

	err = Shutdown(ctx)
	if err != nil {
		t.Fatalf("Shutdown #2 expected nil; got %v", err)
	}

	if got := count.Load(); got != 1 {
		t.Fatalf("expected count to remain 1; got %d", got)
	}
}

//nolint:paralleltest
func TestAddAfterShutdownIsIgnored(t *testing.T) {
	resetQueue(t)

	err := Shutdown(t.Context())
	if err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	var ran bool
	Add(func(ctx context.Context) error {
		ran = true
		return nil
	})

	err = Shutdown(t.Context())
	if err != nil {
		t.Fatalf("second shutdown: %v", err)
	}

	if ran {
		t.Fatalf("task added after shutdown should not run")
	}
}

//nolint:paralleltest
func TestTaskErrorsAreJoinedAndDetectable(t *testing.T) {
	resetQueue(t)

	err1 := errors.New("alpha")
	err2 := errors.New("beta")

	Add(func(ctx context.Context) error { return err1 })
	Add(func(ctx context.Context) error { return err2 })

	shErr := Shutdown(t.Context())
	if shErr == nil {
		t.Fatalf("expected joined error; got nil")
	}

	if !errors.Is(shErr, err1) || !errors.Is(shErr, err2) {
		t.Fatalf("expected joined error to contain both; got: %v", shErr)
	}
}

//nolint:paralleltest
func TestEarlyCancelSkipsRemaining(t *testing.T) {
	resetQueue(t)

	var ranFirst atomic.Bool

	Add(func(ctx context.Context) error {
		ranFirst.Store(true)

		return nil
	})

	gateReady := make(chan struct{})
	Add(func(ctx context.Context) error {
		close(gateReady)
		<-ctx.Done()

		return nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)

	go func() {
		errCh <- Shutdown(ctx)
	}()

	<-gateReady
	cancel()

	shErr := <-errCh
	if !errors.Is(shErr, context.Canceled) {
		t.Fatalf("expected context.Canceled in joined error; got: %v", shErr)
	}

	if ranFirst.Load() {
		t.Fatalf("task after cancellation must be skipped")
	}
}
