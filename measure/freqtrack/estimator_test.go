package freqtrack

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/go-logr/logr/testr"

	"github.com/cwbudde/algo-freqtrack/dsp/signal"
	"github.com/cwbudde/algo-freqtrack/internal/testutil"
)

func TestEstimate_DefaultConverges(t *testing.T) {
	res, err := Estimate(context.Background(), DefaultConfig(), WithLogger(testr.New(t)))
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	if res.CaptureFallback() {
		t.Fatal("unexpected capture fallback")
	}
	testutil.RequireWithin(t, "initial Hz", res.InitialFreq(), 971.1698832499404, 1e-6)
	testutil.RequireWithin(t, "final Hz", res.FinalFreq(), 1000, 1)
	if res.ErrorPercent() > 0.1 {
		t.Fatalf("ErrorPercent() = %v", res.ErrorPercent())
	}

	if len(res.ThetaHistory) != 400 {
		t.Fatalf("history length = %d, want 400", len(res.ThetaHistory))
	}
	if res.ThetaHistory[0] != res.InitialTheta {
		t.Fatalf("History[0] = %v, want initial %v", res.ThetaHistory[0], res.InitialTheta)
	}
	if res.ThetaHistory[399] != res.FinalTheta {
		t.Fatal("last history entry differs from FinalTheta")
	}
	if len(res.Input) != 401 || res.Outputs.Samples() != 401 || res.Outputs.Stages() != 3 {
		t.Fatal("result buffers have the wrong shape")
	}

	initTotal, _ := res.InitialMSE()
	finalTotal, _ := res.FinalMSE()
	testutil.RequireWithin(t, "initial MSE", initTotal, 0.21254030761656637, 1e-9)
	if finalTotal >= initTotal {
		t.Fatalf("final MSE %v not below initial %v", finalTotal, initTotal)
	}
	testutil.RequireWithin(t, "final MSE", finalTotal, 0.021313433855942594, 1e-6)
}

func TestEstimate_StageCounts(t *testing.T) {
	tests := []struct {
		name   string
		stages int
		tol    float64
	}{
		{name: "two stages", stages: 2, tol: 2},
		{name: "three stages", stages: 3, tol: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.NumStages = tt.stages

			res, err := Estimate(context.Background(), cfg)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			testutil.RequireWithin(t, "final Hz", res.FinalFreq(), cfg.FundamentalHz, tt.tol)
			if math.Abs(res.FinalFreq()-1000) >= math.Abs(res.InitialFreq()-1000) {
				t.Fatalf("no improvement: %v -> %v Hz", res.InitialFreq(), res.FinalFreq())
			}
		})
	}
}

func TestEstimate_SingleStageKeepsInitialEstimate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumStages = 1

	res, err := Estimate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if res.FinalTheta != res.InitialTheta {
		t.Fatalf("final %v != initial %v", res.FinalTheta, res.InitialTheta)
	}
	for n, v := range res.ThetaHistory {
		if v != res.InitialTheta {
			t.Fatalf("History[%d] = %v", n, v)
		}
	}
}

func TestEstimate_Noisy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Noise = true
	cfg.ThetaPoints = 200

	res, err := Estimate(context.Background(), cfg, WithWorkers(3))
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	testutil.RequireWithin(t, "final Hz", res.FinalFreq(), 1000, 10)
}

func TestEstimate_DeterministicAcrossWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Noise = true
	cfg.ThetaPoints = 150
	cfg.NumSamples = 120

	a, err := Estimate(context.Background(), cfg, WithWorkers(1))
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	b, err := Estimate(context.Background(), cfg, WithWorkers(8))
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, b.ThetaHistory, a.ThetaHistory, 0)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PoleRadius = 1.2

	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("New() error = %v, want ErrInvalidConfig", err)
	}
	if _, err := Estimate(context.Background(), cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Estimate() error = %v, want ErrInvalidConfig", err)
	}
}

func TestEstimator_WithRecordedSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumSamples = 100
	cfg.ThetaPoints = 300
	x := testutil.HarmonicSignal(cfg.TrueTheta(), 500)

	e, err := New(cfg, WithSource(signal.Recorded(x)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	fromSource, err := e.Estimate(context.Background())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	direct, err := e.EstimateSignal(context.Background(), x)
	if err != nil {
		t.Fatalf("EstimateSignal() error = %v", err)
	}
	if fromSource.FinalTheta != direct.FinalTheta {
		t.Fatalf("source %v != direct %v", fromSource.FinalTheta, direct.FinalTheta)
	}
	if len(direct.Input) != 101 {
		t.Fatalf("input length = %d, want 101", len(direct.Input))
	}

	short, err := New(cfg, WithSource(signal.Recorded(x[:50])))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := short.Estimate(context.Background()); err == nil {
		t.Fatal("expected error for a short recording")
	}
}

func TestEstimateSignal_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumSamples = 20
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if _, err := e.EstimateSignal(ctx, nil); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("empty error = %v", err)
	}
	if _, err := e.EstimateSignal(ctx, make([]float64, 10)); !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("short error = %v", err)
	}

	x := testutil.HarmonicSignal(cfg.TrueTheta(), 21)
	x[7] = math.Inf(-1)
	_, err = e.EstimateSignal(ctx, x)
	var ie *InstabilityError
	if !errors.As(err, &ie) || ie.Phase != "input" || ie.Iteration != 7 {
		t.Fatalf("non-finite error = %v", err)
	}
	if !errors.Is(err, ErrNumericalInstability) {
		t.Fatalf("error %v does not match ErrNumericalInstability", err)
	}
}

func TestEstimator_Logs(t *testing.T) {
	var (
		mu    sync.Mutex
		lines []string
	)
	log := funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	cfg := DefaultConfig()
	cfg.NumSamples = 50
	cfg.ThetaPoints = 100
	if _, err := Estimate(context.Background(), cfg, WithLogger(log)); err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	joined := strings.Join(lines, "\n")
	for _, msg := range []string{"initial search done", "adaptive loop done"} {
		if !strings.Contains(joined, msg) {
			t.Fatalf("log output missing %q:\n%s", msg, joined)
		}
	}
}

func TestResultSummary(t *testing.T) {
	res, err := Estimate(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	s := res.Summary()

	if s.Iterations != 400 || s.CaptureCount != 62 || s.CaptureFallback {
		t.Fatalf("summary = %+v", s)
	}
	testutil.RequireWithin(t, "mse mean", s.MSE.Mean, 0.6848420266020199, 1e-9)
	testutil.RequireWithin(t, "mse min", s.MSE.Min, 0.021331133835493864, 1e-9)
	testutil.RequireWithin(t, "frequency change", s.FrequencyChange, res.FinalFreq()-res.InitialFreq(), 1e-9)
	if s.RejectionDB < 10 {
		t.Fatalf("RejectionDB = %v, want > 10 dB", s.RejectionDB)
	}
	if s.Input.Length != 401 || s.Residual.Length != 401 {
		t.Fatal("stats computed over the wrong length")
	}
}

func TestRejectionDB(t *testing.T) {
	tests := []struct {
		name            string
		input, residual float64
		want            float64
	}{
		{name: "ratio", input: 100, residual: 1, want: 20},
		{name: "silent residual", input: 1, residual: 0, want: 120},
		{name: "silent input", input: 0, residual: 1, want: -120},
		{name: "both silent", input: 0, residual: 0, want: 0},
		{name: "clamped", input: 1, residual: 1e-30, want: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.RequireWithin(t, "rejection", rejectionDB(tt.input, tt.residual), tt.want, 1e-9)
		})
	}
}

func TestResultSummary_SilentSignal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumSamples = 50
	cfg.ThetaPoints = 20
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := e.EstimateSignal(context.Background(), make([]float64, cfg.SignalLength()))
	if err != nil {
		t.Fatalf("EstimateSignal() error = %v", err)
	}

	s := res.Summary()
	if s.RejectionDB != 0 {
		t.Fatalf("RejectionDB = %v, want 0 for a silent signal", s.RejectionDB)
	}
}
