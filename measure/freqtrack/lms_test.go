package freqtrack

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-freqtrack/internal/testutil"
)

// fullRecomputeLMS filters the whole signal at every iteration. The
// streaming RunLMS must reproduce it exactly.
func fullRecomputeLMS(t *testing.T, x []float64, m int, r, theta0, step float64, iterations int) []float64 {
	t.Helper()
	bank := mustBank(t, m, r)
	theta := theta0
	hist := make([]float64, iterations)
	for n := range iterations {
		out := bank.Process(x, theta)
		beta := bank.Sensitivity(theta, out).Final()
		theta -= 2 * step * out.Final()[n] * beta[n]
		hist[n] = theta
	}
	return hist
}

func TestRunLMS_MatchesFullRecompute(t *testing.T) {
	x := testutil.HarmonicSignal(math.Pi/4, 81)
	bank := mustBank(t, 3, 0.95)

	got, err := RunLMS(context.Background(), bank, x, 0.74, 1e-3, 80)
	if err != nil {
		t.Fatalf("RunLMS() error = %v", err)
	}
	want := fullRecomputeLMS(t, x, 3, 0.95, 0.74, 1e-3, 80)
	testutil.RequireSliceNearlyEqual(t, got.History, want, 0)
	if got.Theta != want[len(want)-1] {
		t.Fatalf("Theta = %v, want %v", got.Theta, want[len(want)-1])
	}
}

func TestRunLMS_FirstIterationKeepsTheta(t *testing.T) {
	// The final-row sensitivity is zero at n = 0.
	x := testutil.HarmonicSignal(0.5, 11)
	res, err := RunLMS(context.Background(), mustBank(t, 3, 0.9), x, 0.45, 1e-2, 10)
	if err != nil {
		t.Fatalf("RunLMS() error = %v", err)
	}
	if res.History[0] != 0.45 {
		t.Fatalf("History[0] = %v, want 0.45", res.History[0])
	}
}

func TestRunLMS_SingleStageDoesNotAdapt(t *testing.T) {
	x := testutil.HarmonicSignal(0.5, 51)
	res, err := RunLMS(context.Background(), mustBank(t, 1, 0.9), x, 0.3, 1e-2, 50)
	if err != nil {
		t.Fatalf("RunLMS() error = %v", err)
	}
	for n, v := range res.History {
		if v != 0.3 {
			t.Fatalf("History[%d] = %v, want 0.3", n, v)
		}
	}
}

func TestRunLMS_Errors(t *testing.T) {
	bank := mustBank(t, 3, 0.95)
	ctx := context.Background()

	if _, err := RunLMS(ctx, bank, nil, 0.7, 1e-4, 10); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("empty signal error = %v", err)
	}
	if _, err := RunLMS(ctx, bank, make([]float64, 5), 0.7, 1e-4, 10); !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("short signal error = %v", err)
	}
	if _, err := RunLMS(ctx, bank, make([]float64, 5), 0.7, 1e-4, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("zero iterations error = %v", err)
	}
	if _, err := RunLMS(ctx, bank, make([]float64, 5), math.NaN(), 1e-4, 5); !errors.Is(err, ErrNumericalInstability) {
		t.Fatalf("nan theta error = %v", err)
	}

	x := testutil.HarmonicSignal(0.7, 20)
	x[3] = math.NaN()
	_, err := RunLMS(ctx, bank, x, 0.7, 1e-4, 20)
	var ie *InstabilityError
	if !errors.As(err, &ie) || ie.Phase != "lms" || ie.Iteration != 3 {
		t.Fatalf("nan input error = %v", err)
	}
}

func TestRunLMS_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x := testutil.HarmonicSignal(0.7, 20)
	if _, err := RunLMS(ctx, mustBank(t, 3, 0.95), x, 0.7, 1e-4, 20); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunLMS() error = %v, want context.Canceled", err)
	}
}
