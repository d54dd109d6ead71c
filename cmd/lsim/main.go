package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lsim/internal/analysis"
	"github.com/san-kum/lsim/internal/automation"
	"github.com/san-kum/lsim/internal/config"
	"github.com/san-kum/lsim/internal/experiment"
	"github.com/san-kum/lsim/internal/export"
	"github.com/san-kum/lsim/internal/optim"
	"github.com/san-kum/lsim/internal/sim"
	"github.com/san-kum/lsim/internal/statespace"
	"github.com/san-kum/lsim/internal/storage"
	"github.com/san-kum/lsim/internal/tui"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	configFile string
	dt         float64
	duration   float64
	solver     string
	method     string
	backend    string
	prewarp    float64
	inputKind  string
	kp         float64
	ki         float64
	kd         float64
	target     float64

	outFile   string
	xAxis     int
	yAxis     int
	frameRate int

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	tuneMetric string
	tuneKp     []float64
	tuneKi     []float64
	tuneKd     []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "lsim",
		Short:         "linear system simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				Prefix:          "lsim",
				Level:           level,
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&outFile, "out", "", "also write a response plot (png, svg, pdf)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run response",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&outFile, "out", "", "write an image instead of printing (png, svg, pdf)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run response to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of output 0",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&outFile, "out", "", "write the spectrum as an image")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	phaseCmd.Flags().StringVar(&outFile, "out", "", "write an image instead of printing")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [solver...]",
		Short: "compare solvers on the same system",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareSolvers,
	}
	addSimFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark solvers",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchSystem,
	}
	addSimFlags(benchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-14s %s/%s, %s input, %.1fs\n", name, p.Solver, p.Method, p.Input.Kind, p.Duration)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run simulation interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	renderCmd := &cobra.Command{
		Use:   "render [preset]",
		Short: "run simulation and redraw a chart while it runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderSimulation,
	}
	addSimFlags(renderCmd)
	renderCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "kp", "parameter ("+strings.Join(config.Params, ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 5, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search controller gains",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "settling_time", "metric to minimize")
	tuneCmd.Flags().Float64SliceVar(&tuneKp, "kp-values", optim.Linspace(0.5, 8, 6), "kp candidates")
	tuneCmd.Flags().Float64SliceVar(&tuneKi, "ki-values", optim.Linspace(0, 2, 5), "ki candidates")
	tuneCmd.Flags().Float64SliceVar(&tuneKd, "kd-values", []float64{0, 0.05, 0.2}, "kd candidates")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, analyzeCmd,
		phaseCmd, compareCmd, benchCmd, presetsCmd, liveCmd, renderCmd, scenarioCmd, sweepCmd, tuneCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&solver, "solver", config.DefaultSolver, "solver ("+strings.Join(solverNames(), ", ")+")")
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "discretization method ("+strings.Join(methodNames(), ", ")+")")
	cmd.Flags().StringVar(&backend, "backend", config.DefaultBackend, "realization backend (native, engine)")
	cmd.Flags().Float64Var(&prewarp, "prewarp", 0, "prewarp frequency in rad/s")
	cmd.Flags().StringVar(&inputKind, "input", "", "input kind ("+strings.Join(config.InputKinds, ", ")+")")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "controller kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "controller ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "controller kd")
	cmd.Flags().Float64Var(&target, "target", 1, "controller target")
}

func solverNames() []string {
	var names []string
	for _, s := range statespace.Solvers() {
		names = append(names, s.String())
	}
	return names
}

func methodNames() []string {
	var names []string
	for _, m := range statespace.Methods() {
		names = append(names, m.String())
	}
	return names
}

// resolveConfig layers the default, an optional preset, an optional config
// file and any flags that were set explicitly.
func resolveConfig(cmd *cobra.Command, preset string) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "default"

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = configFile
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("solver") {
		cfg.Solver = solver
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("prewarp") {
		cfg.PrewarpFrequency = prewarp
	}
	if flags.Changed("input") {
		cfg.Input.Kind = inputKind
	}
	if flags.Changed("kp") {
		cfg.ControllerParams.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.ControllerParams.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.ControllerParams.Kd = kd
	}
	if flags.Changed("target") {
		cfg.ControllerParams.Target = target
	}

	return cfg, name, cfg.Validate()
}

func presetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func setup(ctx context.Context, cmd *cobra.Command, preset string) (*experiment.Experiment, string, error) {
	cfg, name, err := resolveConfig(cmd, preset)
	if err != nil {
		return nil, "", err
	}
	exp := experiment.New(cfg, nil, logger)
	if err := exp.Setup(ctx); err != nil {
		return nil, "", err
	}
	return exp, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	exp, name, err := setup(ctx, cmd, presetArg(args))
	if err != nil {
		return err
	}
	cfg := exp.Config()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer st.Close()

	fmt.Printf("running %s...\n", name)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(ctx, storage.RunMetadata{
		Name:     name,
		System:   exp.System(),
		Backend:  cfg.Backend,
		Solver:   cfg.Solver,
		Method:   cfg.Method,
		Input:    cfg.Input.Kind,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
	}, result)
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", runID, "dir", dataDir)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	printMetrics(result.Metrics)

	if outFile != "" {
		if err := export.ResponsePlot(outFile, result, name); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n", outFile)
	}
	return nil
}

func printMetrics(metrics map[string]float64) {
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(metrics) {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, metrics[name])
	}
	w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tDT\tSOLVER\tMETHOD\tINPUT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Solver,
			run.Method,
			run.Input,
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
	result, err := st.LoadResponse(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Times) == 0 {
		return nil, nil, errors.New("no data in run")
	}
	return meta, result, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := export.ResponsePlot(outFile, result, meta.Name); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n", outFile)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s\n", meta.System)
	fmt.Printf("samples: %d\n\n", len(result.Times))

	numOutputs := min(len(result.Outputs[0]), 6)
	for ch := 0; ch < numOutputs; ch++ {
		graph := asciigraph.Plot(result.Output(ch),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("y%d vs time", ch)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	header := []string{"time"}
	for i := range result.Inputs[0] {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	for i := range result.Outputs[0] {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, v := range append(append([]float64{}, result.Inputs[i]...), result.Outputs[i]...) {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, result)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	data := result.Output(0)

	if outFile != "" {
		if err := export.SpectrumPlot(outFile, data, meta.Dt, meta.Name+" spectrum"); err != nil {
			return err
		}
		fmt.Printf("spectrum written to %s\n", outFile)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("system: %s\n\n", meta.System)

	ps := analysis.PowerSpectrum(data)
	if len(ps) < 2 {
		return analysis.ErrTooShort
	}
	plotData := ps[:max(len(ps)/4, 2)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (y0)"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, err := analysis.DominantFrequency(data, meta.Dt)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	portrait, err := analysis.NewPhasePortrait(result.States, xAxis, yAxis)
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := export.PhasePlot(outFile, portrait, meta.Name); err != nil {
			return err
		}
		fmt.Printf("phase plot written to %s\n", outFile)
		return nil
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("x-axis: x%d, y-axis: x%d\n\n", xAxis, yAxis)
	fmt.Println(portrait.ASCII(70, 20))
	return nil
}

func compareSolvers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	solvers := statespace.Solvers()
	if len(args) > 1 {
		solvers = solvers[:0]
		for _, name := range args[1:] {
			s, err := statespace.ParseSolver(name)
			if err != nil {
				return err
			}
			solvers = append(solvers, s)
		}
	}

	exp, name, err := setup(ctx, cmd, args[0])
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := exp.Compare(ctx, solvers)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	cfg := exp.Config()
	fmt.Printf("comparing solvers for %s (dt=%.4f, duration=%.1fs, %v)\n\n", name, cfg.Dt, cfg.Duration, elapsed)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s\n", "solver", "final_y0", "overshoot", "settling_s")
	fmt.Println(strings.Repeat("-", 54))
	for _, res := range results {
		final := res.Outputs[len(res.Outputs)-1][0]
		fmt.Printf("%-12s  %12.6f  %12.4f  %12.4f\n", res.Solver, final, res.Metrics["overshoot"], res.Metrics["settling_time"])
	}
	return nil
}

func benchSystem(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	base, name, err := resolveConfig(cmd, presetArg(args))
	if err != nil {
		return err
	}

	dts := []float64{0.001, 0.01, 0.1}
	fmt.Printf("benchmarking %s (%.1fs simulated)\n\n", name, base.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, s := range statespace.Solvers() {
		for _, step := range dts {
			cfg := base.Clone()
			cfg.Solver = s.String()
			cfg.Dt = step

			exp := experiment.New(cfg, nil, logger)
			if err := exp.Setup(ctx); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%.4fs\t%d\t%v\t%.0f\n",
				s, step, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	exp, name, err := setup(cmd.Context(), cmd, presetArg(args))
	if err != nil {
		return err
	}
	model := exp.Model()
	input, err := exp.NewInput(model)
	if err != nil {
		return err
	}
	return tui.RunLive(name, model, input, exp.SimConfig())
}

func renderSimulation(cmd *cobra.Command, args []string) error {
	exp, name, err := setup(cmd.Context(), cmd, presetArg(args))
	if err != nil {
		return err
	}

	r := tui.NewRenderer(os.Stdout, name, frameRate)
	exp.GetSimulator().AddObserver(r)
	r.Start()
	defer r.Stop()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	last := len(result.Times) - 1
	fmt.Print(r.Frame(result.Outputs[last], result.Inputs[last], result.Times[last]))
	printMetrics(result.Metrics)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	results, err := automation.RunScenario(cmd.Context(), scenario, logger)
	for i, r := range results {
		final := r.Result.Outputs[len(r.Result.Outputs)-1]
		fmt.Printf("\n[%d] %s (%s/%s, dt=%.4f)\n", i+1, r.Step.Name, r.Config.Solver, r.Config.Method, r.Config.Dt)
		fmt.Printf("  final y: %s\n", formatVector(final))
		printMetrics(r.Result.Metrics)
	}
	return err
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 6, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, name, err := resolveConfig(cmd, presetArg(args))
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:     base,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	}, logger)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s over %s\n\n", sweepParam, name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL_Y\tOVERSHOOT\tSETTLING\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%.4f\terror: %v\t\t\n", r.ParamValue, r.Err)
			continue
		}
		fmt.Fprintf(w, "%.4f\t%s\t%.4f\t%.4f\n", r.ParamValue, formatVector(r.FinalOutput),
			r.Metrics["overshoot"], r.Metrics["settling_time"])
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	base, name, err := resolveConfig(cmd, presetArg(args))
	if err != nil {
		return err
	}

	g, err := optim.NewGridSearch([]string{"kp", "ki", "kd"}, [][]float64{tuneKp, tuneKi, tuneKd}, logger)
	if err != nil {
		return err
	}

	fmt.Printf("tuning %s for minimum %s (%d candidates)\n", name, tuneMetric, len(tuneKp)*len(tuneKi)*len(tuneKd))
	params, best, err := g.Search(cmd.Context(), base, tuneMetric)
	if err != nil {
		return err
	}
	fmt.Printf("best: kp=%.4f ki=%.4f kd=%.4f  %s=%.6f\n", params["kp"], params["ki"], params["kd"], tuneMetric, best)
	return nil
}
