package infra

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	if d := CalculateBackoff(0); d != baseDelay {
		t.Errorf("retry 0 = %v, want %v", d, baseDelay)
	}
	if d := CalculateBackoff(1); d != 2*time.Second {
		t.Errorf("retry 1 = %v, want 2s", d)
	}
	if d := CalculateBackoff(3); d != 8*time.Second {
		t.Errorf("retry 3 = %v, want 8s", d)
	}
	if d := CalculateBackoff(10); d != maxDelay {
		t.Errorf("retry 10 = %v, want cap %v", d, maxDelay)
	}
	if d := CalculateBackoff(63); d != maxDelay {
		t.Errorf("overflow retry = %v, want cap %v", d, maxDelay)
	}
}
