package resilience

import (
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

func testConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          20 * time.Millisecond,
	}
}

func failN(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errUpstream })
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())

	failN(cb, 2)
	if cb.State() != CircuitClosed {
		t.Fatalf("state = %s, want CLOSED before threshold", cb.State())
	}

	failN(cb, 1)
	if cb.State() != CircuitOpen {
		t.Fatalf("state = %s, want OPEN after threshold", cb.State())
	}
}

func TestCircuitBreaker_RejectsWhenOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())
	failN(cb, 3)

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("function ran while circuit open")
	}
	if cb.Stats().TotalRejected != 1 {
		t.Errorf("TotalRejected = %d, want 1", cb.Stats().TotalRejected)
	}
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())
	failN(cb, 3)

	time.Sleep(30 * time.Millisecond)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe request rejected: %v", err)
	}
	if cb.State() != CircuitHalfOpen {
		t.Errorf("state = %s, want HALF_OPEN after one probe success", cb.State())
	}
}

func TestCircuitBreaker_ClosesAfterSuccesses(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())
	failN(cb, 3)

	time.Sleep(30 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("probe %d rejected: %v", i, err)
		}
	}
	if cb.State() != CircuitClosed {
		t.Errorf("state = %s, want CLOSED after success threshold", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())
	failN(cb, 3)

	time.Sleep(30 * time.Millisecond)

	_ = cb.Execute(func() error { return errUpstream })
	if cb.State() != CircuitOpen {
		t.Errorf("state = %s, want OPEN after half-open failure", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())

	failN(cb, 2)
	_ = cb.Execute(func() error { return nil })
	failN(cb, 2)

	if cb.State() != CircuitClosed {
		t.Errorf("state = %s, want CLOSED; success should reset the failure streak", cb.State())
	}
}

func TestExecuteWithResult(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())

	v, err := ExecuteWithResult(cb, func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("got (%d, %v), want (7, nil)", v, err)
	}

	failN(cb, 3)
	_, err = ExecuteWithResult(cb, func() (int, error) { return 1, nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())
	failN(cb, 3)

	cb.Reset()
	if cb.State() != CircuitClosed {
		t.Errorf("state = %s, want CLOSED after Reset", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("request rejected after Reset: %v", err)
	}
}

func TestStats_FailureRate(t *testing.T) {
	cb := NewCircuitBreaker("test", testConfig())
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errUpstream })

	if rate := cb.Stats().FailureRate(); rate != 50 {
		t.Errorf("FailureRate = %f, want 50", rate)
	}
	empty := CircuitBreakerStats{}
	if empty.FailureRate() != 0 {
		t.Error("FailureRate on zero requests should be 0")
	}
}
