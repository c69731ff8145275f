package mcpgateway

import (
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	for i := 0; i < 2; i++ {
		if err := cb.CanExecute(); err != nil {
			t.Fatalf("CanExecute() error = %v before reaching threshold", err)
		}
		cb.RecordFailure()
	}
	if cb.State() != StateClosed {
		t.Fatalf("State() = %v, want closed before threshold reached", cb.State())
	}
	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open at threshold", cb.State())
	}
	if err := cb.CanExecute(); err == nil {
		t.Fatal("expected CanExecute() to reject while open and within recovery timeout")
	}
}

func TestCircuitBreakerHalfOpenAfterRecoveryTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	time.Sleep(20 * time.Millisecond)
	if err := cb.CanExecute(); err != nil {
		t.Fatalf("CanExecute() error = %v, want nil after recovery timeout elapses", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("State() = %v, want half_open after probe is allowed", cb.State())
	}
}

func TestCircuitBreakerHalfOpenProbeFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	_ = cb.CanExecute()

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open again after the half-open probe fails", cb.State())
	}
}

func TestCircuitBreakerRecordSuccessResetsToClosed(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	cb.RecordFailure()
	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Fatalf("State() = %v, want closed after success", cb.State())
	}
	cb.RecordFailure()
	if cb.State() != StateClosed {
		t.Fatalf("State() = %v, want still closed (failure count reset by success)", cb.State())
	}
}

func TestCircuitBreakerDefaultsThresholdAndTimeout(t *testing.T) {
	cb := NewCircuitBreaker(0, 0)
	if cb.FailureThreshold != 5 {
		t.Errorf("FailureThreshold = %d, want default 5", cb.FailureThreshold)
	}
	if cb.RecoveryTimeout != 60*time.Second {
		t.Errorf("RecoveryTimeout = %v, want default 60s", cb.RecoveryTimeout)
	}
}
