// Package report writes human-readable run summaries and configuration
// snapshots.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-freqtrack/measure/freqtrack"
)

const rule = "======================================================="

// Files lists the artifacts of a saved run.
type Files struct {
	Summary string
	Config  string
}

// WriteSummary writes the text report of res. generated stamps the header;
// extra lines are appended to the OUTPUT FILES section.
func WriteSummary(w io.Writer, res *freqtrack.Result, generated time.Time, outputs ...string) error {
	bw := bufio.NewWriter(w)
	cfg := res.Config
	s := res.Summary()

	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	line(rule)
	line("  FREQUENCY ESTIMATION RESULTS")
	line(rule)
	line("Generated: %s", generated.Format(time.RFC3339))
	line("")

	line("CONFIGURATION:")
	line("  Signal Parameters:")
	line("    Fundamental frequency: %g Hz", cfg.FundamentalHz)
	line("    Sampling frequency:    %g Hz", cfg.SampleRate)
	line("    Number of samples:     %d", cfg.NumSamples)
	line("    Add noise:             %t", cfg.Noise)
	if cfg.Noise {
		line("    SNR:                   %g dB", cfg.SNRdB)
		line("    Seed:                  %d", cfg.Seed)
	}
	line("  Filter Parameters:")
	line("    Number of subfilters:  %d", cfg.NumStages)
	line("    Pole radius:           %.4f", cfg.PoleRadius)
	line("  LMS Parameters:")
	line("    Step size (μ):         %.6f", cfg.StepSize)
	line("    Theta search points:   %d", cfg.ThetaPoints)
	line("")

	line("RESULTS:")
	line("  True frequency:          %g Hz", s.TrueHz)
	line("  Initial estimate:        %.4f Hz (θ = %.6f rad)", s.InitialHz, s.InitialTheta)
	line("  Final estimate:          %.4f Hz (θ = %.6f rad)", s.FinalHz, s.FinalTheta)
	line("  Estimation error:        %.4f Hz (%.4f%%)", s.ErrorHz, s.ErrorPercent)
	line("  Capture range points:    %d", s.CaptureCount)
	if s.CaptureFallback {
		line("  Capture range:           not found, minimum MSE used")
	}
	line("")

	line("MSE STATISTICS:")
	line("  Minimum MSE:             %.6e", s.MSE.Min)
	line("  Mean MSE:                %.6e", s.MSE.Mean)
	line("  Maximum MSE:             %.6e", s.MSE.Max)
	line("  Minimum MSE₁:            %.6e", s.MSEFirst.Min)
	line("  Mean MSE₁:               %.6e", s.MSEFirst.Mean)
	line("  Maximum MSE₁:            %.6e", s.MSEFirst.Max)
	line("")

	line("CONVERGENCE STATISTICS:")
	hist := res.FreqHistory()
	if len(hist) > 0 {
		line("  Initial frequency:       %.4f Hz", hist[0])
		line("  Final frequency:         %.4f Hz", hist[len(hist)-1])
	}
	line("  Frequency change:        %.4f Hz", s.FrequencyChange)
	line("  Convergence iterations:  %d", s.Iterations)
	line("")

	line("SIGNAL STATISTICS:")
	line("  Input RMS:               %.6f (%.2f dB)", s.Input.RMS, s.Input.RMS_dB)
	line("  Residual RMS:            %.6f (%.2f dB)", s.Residual.RMS, s.Residual.RMS_dB)
	line("  Rejection:               %.2f dB", s.RejectionDB)
	line("  Elapsed:                 %s", s.Elapsed.Round(time.Microsecond))
	line("")

	if sp, err := res.ResidualSpectrum(); err == nil {
		st := sp.Stats()
		line("RESIDUAL SPECTRUM:")
		line("  Peak:                    %.2f Hz (%.2f dB)", st.PeakHz, st.Peak_dB)
		line("  Centroid:                %.2f Hz", st.Centroid)
		line("  Spread:                  %.2f Hz", st.Spread)
		line("  Flatness:                %.4f", st.Flatness)
		line("")
	}

	if len(outputs) > 0 {
		line("OUTPUT FILES:")
		for _, o := range outputs {
			line("  %s", o)
		}
		line("")
	}

	line(rule)
	line("End of Report")
	line(rule)
	return bw.Flush()
}

// WriteConfig writes v as YAML.
func WriteConfig(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("report: encode config: %w", err)
	}
	return enc.Close()
}

// Save writes the summary and a YAML snapshot of settings into dir, named
// after generated. The directory is created if needed.
func Save(dir string, res *freqtrack.Result, settings any, generated time.Time, extra ...string) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("report: create output dir: %w", err)
	}
	base := filepath.Join(dir, "frequency_estimation_"+generated.Format("20060102_150405"))
	files := Files{Summary: base + "_summary.txt", Config: base + "_config.yaml"}

	if err := writeFile(files.Config, func(w io.Writer) error { return WriteConfig(w, settings) }); err != nil {
		return Files{}, err
	}
	outputs := append([]string{fmt.Sprintf("%-25s%s", "Configuration (YAML):", files.Config)}, extra...)
	if err := writeFile(files.Summary, func(w io.Writer) error {
		return WriteSummary(w, res, generated, outputs...)
	}); err != nil {
		return Files{}, err
	}
	return files, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("report: %w", cerr)
		}
	}()
	return write(f)
}
