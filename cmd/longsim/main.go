package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/longsim/internal/config"
	"github.com/san-kum/longsim/internal/profile"
)

var (
	dataDir     string
	configFile  string
	presetName  string
	duration    float64
	throttle    float64
	profileName string
	hardened    bool
	diagnostics bool
	canIface    string
	logLevel    string
	frameRate   int
	outPath     string
	dpi         int
	// sweep
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	parallel   int
	// serve
	listenAddr string
	realtime   bool
	// bench
	benchSteps int
	// montecarlo
	trials      int
	seed        int64
	massSpread  float64
	dragSpread  float64
	speedSpread float64
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:           "longsim",
		Short:         "longitudinal vehicle dynamics simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".longsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&canIface, "can-iface", "", "socketcan interface to mirror samples to (e.g. vcan0)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run signals in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "write PNG plots of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  pngRun,
	}
	pngCmd.Flags().StringVarP(&outPath, "out", "o", "", "output directory (default: the run directory)")
	pngCmd.Flags().IntVar(&dpi, "dpi", 150, "image resolution")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	exportTrajCmd := &cobra.Command{
		Use:   "export-trajectory [run_id]",
		Short: "write the time, position trajectory file",
		Args:  cobra.ExactArgs(1),
		RunE:  exportTrajectory,
	}
	exportTrajCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and driving profiles",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep one vehicle parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1000, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 3000, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "max concurrent runs (0: unlimited)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset...]",
		Short: "run presets concurrently and compare",
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration for every preset (default: each preset's own)")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "max concurrent runs (0: unlimited)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream a simulation to WebSocket clients",
		Args:  cobra.NoArgs,
		RunE:  serveStream,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().BoolVar(&realtime, "realtime", true, "pace the simulation at wall-clock speed")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run randomly perturbed trials",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0: time based)")
	monteCarloCmd.Flags().Float64Var(&massSpread, "mass-spread", 0.1, "relative mass half-width")
	monteCarloCmd.Flags().Float64Var(&dragSpread, "drag-spread", 0.1, "relative drag coefficient half-width")
	monteCarloCmd.Flags().Float64Var(&speedSpread, "speed-spread", 1.0, "initial velocity half-width (m/s)")
	monteCarloCmd.Flags().IntVar(&parallel, "parallel", 0, "max concurrent runs (0: unlimited)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "velocity response, spectrum and phase portrait",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the integrator",
		Args:  cobra.NoArgs,
		RunE:  benchIntegrator,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 1_000_000, "steps per run")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, pngCmd, exportJSONCmd, exportTrajCmd,
		liveCmd, presetsCmd, sweepCmd, ensembleCmd, serveCmd, scenarioCmd, monteCarloCmd, analyzeCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&presetName, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Float64Var(&throttle, "throttle", 0.2, "constant throttle (replaces the profile)")
	cmd.Flags().StringVar(&profileName, "profile", config.DefaultProfile, "driving profile")
	cmd.Flags().BoolVar(&hardened, "hardened", false, "clamp throttle and tire force, guard slip at standstill")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "log domain warnings")
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	return nil
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if presetName != "" {
		p := config.GetPreset(presetName)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("profile") {
		cfg.Profile = profileName
		cfg.Throttle, cfg.Road = nil, nil
	}
	if flags.Changed("throttle") {
		cfg.Throttle = []profile.Breakpoint{{T: 0, Value: throttle}}
	}
	if flags.Changed("hardened") {
		cfg.Hardened = hardened
	}
	if flags.Changed("diagnostics") {
		cfg.Diagnostics = diagnostics
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
