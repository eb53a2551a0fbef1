package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/longsim/internal/analysis"
	"github.com/san-kum/longsim/internal/automation"
	"github.com/san-kum/longsim/internal/canbus"
	"github.com/san-kum/longsim/internal/config"
	"github.com/san-kum/longsim/internal/export"
	"github.com/san-kum/longsim/internal/metrics"
	"github.com/san-kum/longsim/internal/profile"
	"github.com/san-kum/longsim/internal/sim"
	"github.com/san-kum/longsim/internal/storage"
	"github.com/san-kum/longsim/internal/stream"
	"github.com/san-kum/longsim/internal/vehicle"
	"github.com/san-kum/longsim/internal/viz"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newSimulator builds the integrator, profile and default metrics for cfg.
func newSimulator(cfg *config.Config) (*sim.Simulator, error) {
	prof, err := cfg.BuildProfile(profile.NewRegistry())
	if err != nil {
		return nil, err
	}
	veh := vehicle.New(cfg.Options(vehicle.NewLogSink(log))...)
	s := sim.New(veh, prof)
	for _, m := range metrics.Defaults(cfg.Vehicle) {
		s.AddMetric(m)
	}
	return s, nil
}

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{Duration: cfg.Duration, ValidateState: cfg.ValidateState}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var tx *canbus.Transmitter
	if canIface != "" {
		tx, err = canbus.Dial(ctx, canIface, log.WithField("iface", canIface))
		if err != nil {
			return err
		}
		defer tx.Close()
		s.AddObserver(tx)
	}

	log.WithFields(logrus.Fields{
		"profile":  cfg.ProfileName(),
		"duration": cfg.Duration,
		"hardened": cfg.Hardened,
	}).Debug("starting run")

	fmt.Printf("running %s profile...\n", cfg.ProfileName())
	start := time.Now()

	result, err := s.Run(ctx, simConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Profile:  cfg.ProfileName(),
		Dt:       cfg.Vehicle.Dt,
		Duration: cfg.Duration,
		Hardened: cfg.Hardened,
		Params:   cfg.Vehicle,
		Init:     cfg.InitState,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(result.Samples))
	if final, ok := result.Final(); ok {
		fmt.Printf("final: x=%.3f m  v=%.4f m/s  w=%.2f rad/s\n", final.State.X, final.State.V, final.State.W)
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	if tx != nil {
		fmt.Printf("can frames: %d sent, %d failed\n", tx.Sent(), tx.Failed())
	}

	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, result.Metrics)
	return nil
}

func printMetrics(out io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROFILE\tTIME\tDURATION\tDT\tSAMPLES\tHARDENED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%v\n",
			run.ID,
			run.Profile,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Samples,
			run.Hardened,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, &sim.Result{Samples: samples, Metrics: meta.Metrics}, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, r, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("profile: %s\n", meta.Profile)
	fmt.Printf("samples: %d\n\n", len(r.Samples))

	for _, graph := range viz.PlotSignals(r, viz.Signals, 80, 10) {
		fmt.Println(graph)
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIGNAL\tMEAN\tSTD\tMIN\tMAX\tFINAL")
	summary := metrics.SummarizeRun(r)
	for _, name := range viz.Signals {
		s, ok := summary[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n", name, s.Mean, s.StdDev, s.Min, s.Max, s.Final)
	}
	return w.Flush()
}

func pngRun(cmd *cobra.Command, args []string) error {
	_, r, err := loadRun(args[0])
	if err != nil {
		return err
	}

	dir := outPath
	if dir == "" {
		dir = storage.New(dataDir).Dir(args[0])
	}
	paths, err := export.SaveRunPlots(dir, r, export.DefaultCharts, dpi)
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}
	return err
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, r, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(outPath)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(out, *meta, r.Samples); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "exported %d samples to %s\n", len(r.Samples), outPath)
	}
	return nil
}

func exportTrajectory(cmd *cobra.Command, args []string) error {
	_, r, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out, err := openOutput(outPath)
	if err != nil {
		return err
	}
	if err := storage.WriteTrajectory(out, r.Times(), r.Positions()); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	results, runErr := automation.RunScenario(ctx, sc, st, log)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nSTEP\tPROFILE\tDURATION\tX\tV\tRUN ID")
	for _, r := range results {
		final, _ := r.Result.Final()
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%.3f\t%.4f\t%s\n",
			r.Name, r.Config.ProfileName(), r.Config.Duration, final.State.X, final.State.V, r.RunID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base: cfg,
		ParamSpread: map[string]float64{
			"mass":       massSpread,
			"drag_coeff": dragSpread,
		},
		VelocitySpread: speedSpread,
		NumTrials:      trials,
		Seed:           seed,
		Parallel:       parallel,
	})
	if err != nil {
		return err
	}

	stable, unstable, v := automation.MonteCarloStats(results)
	fmt.Printf("%d trials in %v\n", len(results), time.Since(start).Round(time.Millisecond))
	fmt.Printf("stable: %d  unstable: %d\n", stable, unstable)
	fmt.Printf("final velocity: mean %.4f  std %.4f  min %.4f  max %.4f m/s\n", v.Mean, v.StdDev, v.Min, v.Max)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, r, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("profile: %s\n\n", meta.Profile)

	resp, err := analysis.Respond(r.Times(), r.Velocities())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "initial velocity\t%.4f m/s\n", resp.Initial)
	fmt.Fprintf(w, "final velocity\t%.4f m/s\n", resp.Final)
	fmt.Fprintf(w, "peak\t%.4f m/s at %.2f s\n", resp.Peak, resp.PeakTime)
	fmt.Fprintf(w, "rise time (10-90%%)\t%.3f s\n", resp.RiseTime)
	fmt.Fprintf(w, "settling time (2%%)\t%.3f s\n", resp.SettlingTime)
	fmt.Fprintf(w, "overshoot\t%.2f%%\n", resp.Overshoot*100)
	if err := w.Flush(); err != nil {
		return err
	}

	spec := analysis.PowerSpectrum(r.Accelerations(), meta.Dt)
	if n := len(spec.Amplitudes); n > 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(spec.Amplitudes[1:n/4+1],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("acceleration spectrum"),
		))
		if freq, _ := spec.Dominant(); freq > 0 {
			fmt.Printf("dominant frequency: %.3f hz (period %.3f s)\n", freq, 1/freq)
		}
	}

	fmt.Println("\nphase portrait (v vs w):")
	fmt.Print(analysis.NewPhasePortrait("v", r.Velocities(), "w", r.EngineSpeeds()).ASCII(60, 15))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	prof, err := cfg.BuildProfile(profile.NewRegistry())
	if err != nil {
		return err
	}

	// Warnings would tear the alt screen; keep them out of the live view.
	veh := vehicle.New(cfg.Options(nil)...)
	return viz.RunLive(viz.NewLive(veh, prof, cfg.ProfileName(), cfg.Duration, frameRate))
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPROFILE\tDURATION\tHARDENED\tV0\tW0")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%v\t%.3f\t%.3f\n",
			name, p.ProfileName(), p.Duration, p.Hardened, p.InitState.V, p.InitState.W)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	reg := profile.NewRegistry()
	fmt.Println("\nprofiles:")
	for _, name := range reg.List() {
		fmt.Printf("  %-8s %s\n", name, reg.Describe(name))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	reg := profile.NewRegistry()
	if _, err := cfg.BuildProfile(reg); err != nil {
		return err
	}

	sweep := &sim.ParameterSweep{
		Param:    args[0],
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Base:     cfg.Vehicle,
		Init:     cfg.InitState,
		Profile: func() profile.Profile {
			p, _ := cfg.BuildProfile(reg)
			return p
		},
		Metrics: func() []sim.Metric {
			return []sim.Metric{metrics.NewMaxVelocity(), metrics.NewThrottleEffort()}
		},
		Parallel: parallel,
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := sim.RunSweep(ctx, sweep, simConfig(cfg))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tX\tV\tW\tMAX V\n", strings.ToUpper(args[0]))
	finals := make([]float64, len(results))
	for i, r := range results {
		finals[i] = r.Final.V
		fmt.Fprintf(w, "%g\t%.3f\t%.4f\t%.2f\t%.4f\n",
			r.ParamValue, r.Final.X, r.Final.V, r.Final.W, r.Metrics["max_velocity"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(finals) > 1 {
		fmt.Println()
		fmt.Println(viz.Plot(finals, fmt.Sprintf("final velocity vs %s", args[0]), 60, 8))
	}
	return nil
}

// presetJobs builds one ensemble job per preset. Each job runs with its
// preset's own parameters, duration and diagnostics; a positive
// durationOverride replaces every preset duration.
func presetJobs(names []string, durationOverride float64) ([]sim.Job, error) {
	reg := profile.NewRegistry()
	jobs := make([]sim.Job, 0, len(names))
	for _, name := range names {
		p := config.GetPreset(name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		if _, err := p.BuildProfile(reg); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}

		runCfg := simConfig(p)
		if durationOverride > 0 {
			runCfg.Duration = durationOverride
		}
		jobs = append(jobs, sim.Job{
			Name:   name,
			Params: p.Vehicle,
			Init:   p.InitState,
			Profile: func() profile.Profile {
				prof, _ := p.BuildProfile(reg)
				return prof
			},
			Options: p.Options(vehicle.NewLogSink(log.WithField("preset", name))),
			Config:  &runCfg,
			Metrics: metrics.Defaults(p.Vehicle),
		})
	}
	return jobs, nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	override := 0.0
	if cmd.Flags().Changed("time") {
		if duration <= 0 {
			return fmt.Errorf("duration must be positive, got %f", duration)
		}
		override = duration
	}
	jobs, err := presetJobs(names, override)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := sim.NewEnsemble(jobs, parallel).Run(ctx, sim.Config{Duration: config.DefaultDuration})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"runs": len(jobs), "elapsed": time.Since(start)}).Info("ensemble finished")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tX\tV\tW\tSTABLE\tKE")
	for i, r := range results {
		final, _ := r.Final()
		fmt.Fprintf(w, "%s\t%.3f\t%.4f\t%.2f\t%.0f\t%.1f\n",
			jobs[i].Name, final.State.X, final.State.V, final.State.W,
			r.Metrics["stability"], r.Metrics["kinetic_energy"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	series := make([][]float64, 0, len(results))
	for _, r := range results {
		series = append(series, r.Velocities())
	}
	fmt.Println()
	fmt.Println(asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("velocity (m/s)"),
	))
	return nil
}

func serveStream(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	hub := stream.NewHub(log.WithField("component", "stream"))
	publish := hub.Observer()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return stream.Serve(ctx, listenAddr, hub)
	})
	g.Go(func() error {
		dt := time.Duration(cfg.Vehicle.Dt * float64(time.Second))
		ticker := time.NewTicker(dt)
		defer ticker.Stop()

		err := s.RunWithCallback(ctx, simConfig(cfg), func(sm sim.Sample) bool {
			publish.OnStep(sm)
			if realtime {
				select {
				case <-ticker.C:
				case <-ctx.Done():
					return false
				}
			}
			return true
		})
		if err != nil && ctx.Err() == nil {
			return err
		}
		log.WithField("steps", s.Vehicle().Steps()).Info("simulation finished; still serving until interrupted")
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func benchIntegrator(cmd *cobra.Command, args []string) error {
	if benchSteps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", benchSteps)
	}
	type variant struct {
		name string
		opts []vehicle.Option
	}
	variants := []variant{
		{"lagged euler", nil},
		{"hardened", []vehicle.Option{vehicle.WithHardened(true)}},
		{"diagnostics", []vehicle.Option{vehicle.WithDiagnostics(&vehicle.Collector{})}},
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tSTEPS\tTIME\tNS/STEP\tSTEPS/S")
	for _, v := range variants {
		veh := vehicle.New(v.opts...)
		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			veh.Step(0.2, 0)
		}
		elapsed := time.Since(start)
		nsPerStep := float64(elapsed.Nanoseconds()) / float64(benchSteps)
		fmt.Fprintf(w, "%s\t%d\t%v\t%.1f\t%.0f\n",
			v.name, benchSteps, elapsed.Round(time.Microsecond), nsPerStep, 1e9/nsPerStep)
	}
	return w.Flush()
}
