// Command freqtrack estimates the fundamental frequency of a harmonic test
// signal with a cascaded adaptive notch filter.
//
// Usage:
//
//	freqtrack <run|runs|show|response> [flags]
//
// Examples:
//
//	freqtrack run
//	freqtrack run --freq 750 --noise --snr 12 --store sqlite
//	freqtrack runs --store sqlite
//	freqtrack show --store sqlite 6f1c...
//	freqtrack response --freq 1000 --points 12
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
	"github.com/cwbudde/algo-freqtrack/dsp/filter/notch"
	"github.com/cwbudde/algo-freqtrack/internal/config"
	"github.com/cwbudde/algo-freqtrack/internal/logging"
	"github.com/cwbudde/algo-freqtrack/internal/metrics"
	"github.com/cwbudde/algo-freqtrack/internal/report"
	"github.com/cwbudde/algo-freqtrack/internal/storage"
	"github.com/cwbudde/algo-freqtrack/measure/freqtrack"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:], out)
	case "runs":
		return runRuns(ctx, args[1:], out)
	case "show":
		return runShow(ctx, args[1:], out)
	case "response":
		return runResponse(args[1:], out)
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	config.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(fs, "")
	if err != nil {
		return err
	}
	log, err := logging.New(settings.LogLevel, false)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	res, err := freqtrack.Estimate(ctx, settings.Estimation,
		freqtrack.WithLogger(log),
		freqtrack.WithWorkers(settings.Workers),
	)
	recorder.Observe(res, err)
	if settings.MetricsFile != "" {
		if werr := recorder.WriteTextfile(settings.MetricsFile); werr != nil {
			return errors.Join(err, werr)
		}
	}
	if err != nil {
		return err
	}

	printResult(out, res)

	if !settings.Save {
		return nil
	}
	now := time.Now()
	id, err := saveRun(ctx, settings, res, now)
	if err != nil {
		return err
	}
	files, err := report.Save(settings.OutputDir, res, settings, now,
		fmt.Sprintf("%-25s%s", "Run ("+settings.Store+"):", id))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run id: %s\nsummary: %s\nconfig: %s\n", id, files.Summary, files.Config)
	log.V(logging.DEBUG).Info("run saved", "id", id, "store", settings.Store)
	return nil
}

func saveRun(ctx context.Context, settings *config.Settings, res *freqtrack.Result, now time.Time) (string, error) {
	store, err := openStore(ctx, settings.Store, settings.SQLitePath)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	rec, err := storage.NewRunRecord(res, now)
	if err != nil {
		return "", err
	}
	if err := store.SaveRun(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func openStore(ctx context.Context, kind, path string) (storage.Store, error) {
	store, err := storage.NewStore(kind, path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}
	return store, nil
}

func printResult(out io.Writer, res *freqtrack.Result) {
	s := res.Summary()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "True frequency:\t%.4f Hz\n", s.TrueHz)
	fmt.Fprintf(tw, "Initial estimate:\t%.4f Hz\t(θ = %.6f rad)\n", s.InitialHz, s.InitialTheta)
	fmt.Fprintf(tw, "Final estimate:\t%.4f Hz\t(θ = %.6f rad)\n", s.FinalHz, s.FinalTheta)
	fmt.Fprintf(tw, "Error:\t%.4f Hz\t(%.4f%%)\n", s.ErrorHz, s.ErrorPercent)
	fmt.Fprintf(tw, "Capture points:\t%d\n", s.CaptureCount)
	if s.CaptureFallback {
		fmt.Fprintf(tw, "Capture range:\tnot found, minimum MSE used\n")
	}
	fmt.Fprintf(tw, "Rejection:\t%.2f dB\n", s.RejectionDB)
	fmt.Fprintf(tw, "Elapsed:\t%s\n", s.Elapsed.Round(time.Microsecond))
	_ = tw.Flush()
}

func storeFlags(fs *flag.FlagSet) (kind, path *string) {
	d := config.Defaults()
	kind = fs.String("store", d.Store, "store backend: memory|sqlite")
	path = fs.String("sqlite-path", d.SQLitePath, "sqlite database path")
	return kind, path
}

func runRuns(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	kind, path := storeFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	store, err := openStore(ctx, *kind, *path)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	infos, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}
	// newest first
	if len(infos) > *limit {
		infos = infos[len(infos)-*limit:]
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED (UTC)\tTRUE Hz\tFINAL Hz\tERROR Hz")
	for i := len(infos) - 1; i >= 0; i-- {
		info := infos[i]
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.4f\t%.4f\n",
			info.ID, info.CreatedAt.Format(time.DateTime), info.FundamentalHz, info.FinalHz, info.ErrorHz)
	}
	return tw.Flush()
}

func runShow(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	kind, path := storeFlags(fs)
	history := fs.Bool("history", false, "print the frequency trajectory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("show requires exactly one run id")
	}
	id := fs.Arg(0)

	store, err := openStore(ctx, *kind, *path)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	rec, ok, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run not found: %s", id)
	}

	cfg := rec.Config
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", rec.ID)
	fmt.Fprintf(tw, "Created:\t%s\n", rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Signal:\t%g Hz @ %g Hz, N=%d, noise=%t\n", cfg.FundamentalHz, cfg.SampleRate, cfg.NumSamples, cfg.Noise)
	fmt.Fprintf(tw, "Filter:\tM=%d, r=%.4f, μ=%g, grid=%d\n", cfg.NumStages, cfg.PoleRadius, cfg.StepSize, cfg.ThetaPoints)
	fmt.Fprintf(tw, "Initial estimate:\t%.4f Hz\t(θ = %.6f rad)\n", rec.InitialHz, rec.InitialTheta)
	fmt.Fprintf(tw, "Final estimate:\t%.4f Hz\t(θ = %.6f rad)\n", rec.FinalHz, rec.FinalTheta)
	fmt.Fprintf(tw, "Error:\t%.4f Hz\t(%.4f%%)\n", rec.ErrorHz, rec.ErrorPercent)
	fmt.Fprintf(tw, "Capture:\tindex %d, %d points, fallback=%t\n", rec.CaptureIndex, rec.CaptureCount, rec.CaptureFallback)
	fmt.Fprintf(tw, "MSE:\tinitial %.6e, final %.6e\n", rec.InitialMSE, rec.FinalMSE)
	if err := tw.Flush(); err != nil {
		return err
	}

	if *history {
		freqs := core.ThetasToFreqs(rec.ThetaHistory, cfg.SampleRate)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "n\tθ (rad)\tHz\t")
		for n, th := range rec.ThetaHistory {
			fmt.Fprintf(tw, "%d\t%.8f\t%.4f\t\n", n, th, freqs[n])
		}
		return tw.Flush()
	}
	return nil
}

func runResponse(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("response", flag.ContinueOnError)
	d := freqtrack.DefaultConfig()
	freq := fs.Float64("freq", d.FundamentalHz, "notch fundamental in Hz")
	theta := fs.Float64("theta", 0, "notch fundamental in rad/sample, overrides --freq")
	sampleRate := fs.Float64("sample-rate", d.SampleRate, "sampling frequency in Hz")
	stages := fs.Int("subfilters", d.NumStages, "number of notch stages M")
	radius := fs.Float64("pole-radius", d.PoleRadius, "pole radius r")
	points := fs.Int("points", 16, "grid parameter P; 3·P frequencies over [-π, π]")
	perStage := fs.Bool("stages", false, "print per-stage magnitudes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *points < 1 {
		return errors.New("points must be > 0")
	}

	bank, err := notch.NewBank(*stages, *radius)
	if err != nil {
		return err
	}
	th := core.FreqToTheta(*freq, *sampleRate)
	if fs.Changed("theta") {
		th = *theta
	}

	r := freqtrack.AnalyzeResponse(bank, th, freqtrack.ResponseGrid(*points), *sampleRate)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "ω (rad)\tHz\t|H| dB\t")
	if *perStage {
		for m := 1; m <= *stages; m++ {
			fmt.Fprintf(tw, "H%d dB\t", m)
		}
	}
	fmt.Fprintln(tw)
	for i, w := range r.Omega {
		fmt.Fprintf(tw, "%.4f\t%.2f\t%.2f\t", w, r.FreqHz[i], r.TotalDB[i])
		if *perStage {
			for _, db := range r.StagesDB {
				fmt.Fprintf(tw, "%.2f\t", db[i])
			}
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nθ = %.6f rad (%.4f Hz)\n", th, core.ThetaToFreq(th, *sampleRate))
	for m, depth := range r.NotchDepthDB(*stages) {
		fmt.Fprintf(out, "notch %d at %.2f Hz: %.2f dB\n", m+1, float64(m+1)*core.ThetaToFreq(th, *sampleRate), depth)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: freqtrack <run|runs|show|response> [flags]", msg)
}
