package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/springbox/internal/analysis"
	"github.com/san-kum/springbox/internal/automation"
	"github.com/san-kum/springbox/internal/config"
	"github.com/san-kum/springbox/internal/export"
	"github.com/san-kum/springbox/internal/metrics"
	"github.com/san-kum/springbox/internal/optim"
	"github.com/san-kum/springbox/internal/physics"
	"github.com/san-kum/springbox/internal/record"
	"github.com/san-kum/springbox/internal/sim"
	"github.com/san-kum/springbox/internal/tui"
	"github.com/san-kum/springbox/internal/viz"
)

var (
	configFile string
	logPath    string
	theme      string
	frameRate  int
	steps      int
	benchSteps int
	svgSteps   int
	sweepSteps int
	scriptFile string
	every      int
	track      string
	component  string
	live       bool
	numRuns    int
	width      int
	height     int
	braille    bool
	format     string
	xAxis      string
	yAxis      string
	cross      string
	params     []string
	metric     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "springbox [preset]",
		Short: "interactive spring-mass sandbox",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "log file path")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "cyberpunk", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	rootCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate (default from scene)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scene headless",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	sceneFlags(runCmd)
	runCmd.Flags().StringVar(&track, "track", "", "anchor to plot")
	runCmd.Flags().StringVar(&component, "component", "y", "tracked component (x, y, vx, vy)")
	runCmd.Flags().BoolVar(&live, "live", false, "draw the scene while it runs at wall-clock pace")
	runCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate for --live (default from scene)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [preset]",
		Short: "print a scene as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScene(args)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark a scene across parallel runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	benchCmd.Flags().IntVar(&numRuns, "runs", 4, "parallel runs per timestep")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 5000, "steps per run")

	svgCmd := &cobra.Command{
		Use:   "svg [preset]",
		Short: "render a scene to svg on stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderSVG,
	}
	svgCmd.Flags().IntVar(&svgSteps, "steps", 0, "steps to run before rendering")
	svgCmd.Flags().IntVar(&width, "width", 800, "image width")
	svgCmd.Flags().IntVar(&height, "height", 600, "image height")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal canvas dot by dot")
	svgCmd.Flags().StringVar(&track, "track", "", "draw the path of an anchor instead")

	traceCmd := &cobra.Command{
		Use:   "trace [preset]",
		Short: "run a scene and write the anchor tracks to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  traceScene,
	}
	sceneFlags(traceCmd)
	traceCmd.Flags().StringVar(&format, "format", "csv", "csv or json")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [preset]",
		Short: "frequency analysis of an anchor track",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeScene,
	}
	sceneFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&track, "track", "", "anchor to analyse (default first moving anchor)")
	analyzeCmd.Flags().StringVar(&component, "component", "y", "component (x, y, vx, vy)")

	phaseCmd := &cobra.Command{
		Use:   "phase [preset]",
		Short: "phase space plot of an anchor track",
		Args:  cobra.MaximumNArgs(1),
		RunE:  phasePlot,
	}
	sceneFlags(phaseCmd)
	phaseCmd.Flags().StringVar(&track, "track", "", "anchor to plot (default first moving anchor)")
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "y", "component on the x axis")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "vy", "component on the y axis")
	phaseCmd.Flags().StringVar(&cross, "poincare", "", "also plot a section where this component crosses zero upward")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "grid search scene parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScene,
	}
	sweepCmd.Flags().StringArrayVar(&params, "param", nil, "parameter range name=from:to:n (repeatable)")
	sweepCmd.Flags().StringVar(&metric, "metric", "energy_drift", "metric to minimise")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 1000, "steps per candidate")

	rootCmd.AddCommand(runCmd, presetsCmd, configCmd, benchCmd, svgCmd, traceCmd, analyzeCmd, phaseCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sceneFlags registers the flags every simulate-based command shares.
// The defaults are the same everywhere since the variables are shared.
func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&steps, "steps", 1000, "number of steps")
	cmd.Flags().StringVar(&scriptFile, "script", "", "replay an automation script (yaml)")
	cmd.Flags().IntVar(&every, "every", 1, "record every n steps")
}

// loadScene resolves the scene from a preset argument, the --config file,
// or the default preset, in that order.
func loadScene(args []string) (*config.Config, error) {
	if len(args) > 0 {
		if configFile != "" {
			return nil, fmt.Errorf("give a preset or --config, not both")
		}
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		return cfg, nil
	}
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.GetPreset(config.DefaultPreset), nil
}

func newLogger(quiet bool) (*log.Logger, func(), error) {
	if logPath == "" {
		if quiet {
			return log.New(io.Discard, "", 0), func() {}, nil
		}
		return log.New(os.Stderr, "", log.LstdFlags), func() {}, nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "springbox ", log.LstdFlags), func() { f.Close() }, nil
}

func fpsFor(cfg *config.Config) int {
	if frameRate > 0 {
		return frameRate
	}
	return cfg.FPS
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	build := func() (*sim.Simulation, error) {
		s, _, err := config.Build(cfg, sim.WithLogger(log.Default()))
		return s, err
	}
	return tui.Run(ctx, build, tui.Options{FPS: fpsFor(cfg), Theme: theme}, logPath)
}

// outcome is a finished headless run.
type outcome struct {
	cfg     *config.Config
	sim     *sim.Simulation
	anchors map[string]sim.AnchorID
	metrics metrics.Set
	trace   *record.Trace
	elapsed time.Duration
}

// simulate builds the scene and advances it by --steps, by an automation
// script when --script is set, or live at wall-clock pace with --live,
// recording every named anchor.
func simulate(ctx context.Context, args []string, logger *log.Logger) (*outcome, error) {
	cfg, err := loadScene(args)
	if err != nil {
		return nil, err
	}
	s, anchors, err := config.Build(cfg, sim.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	out := &outcome{cfg: cfg, sim: s, anchors: anchors, metrics: metrics.Default()}
	rec := record.NewRecorder(anchors, every)
	s.AddObserver(out.metrics)
	s.AddObserver(rec)
	start := time.Now()

	switch {
	case scriptFile != "":
		script, err := automation.LoadScript(scriptFile)
		if err != nil {
			return nil, err
		}
		player := automation.NewPlayer(s, anchors, automation.WithLogger(logger))
		res, err := player.Replay(ctx, script)
		if err != nil {
			return nil, err
		}
		logger.Printf("script %s: %d ticks, %d actions applied", script.Name, res.Ticks, res.Applied)
	case live:
		r := tui.NewLiveRenderer(os.Stdout, fpsFor(cfg), theme)
		s.AddObserver(r)
		s.AddObserver(sim.ObserverFunc(func(snap sim.Snapshot) {
			if snap.Step >= uint64(steps) {
				s.Stop()
			}
		}))
		r.Start()
		err := s.Run(ctx)
		r.Stop()
		if err != nil && !errors.Is(err, context.Canceled) {
			return nil, err
		}
	default:
		for i := 0; i < steps; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := s.Step(); err != nil {
				return nil, err
			}
		}
	}

	out.elapsed = time.Since(start)
	out.trace = rec.Trace()
	return out, nil
}

func (o *outcome) header() record.Header {
	snap := o.sim.Snapshot()
	return record.Header{
		Scene:   o.cfg.Scene.Name,
		Script:  scriptFile,
		Dt:      o.cfg.Dt,
		Steps:   snap.Step,
		Anchors: len(snap.Anchors),
		Springs: len(snap.Springs),
		Culled:  o.sim.Culled(),
		Metrics: o.metrics.Values(),
	}
}

// series picks the --track anchor, or the first one that moved.
func (o *outcome) series(comp string) (string, []float64, error) {
	name := track
	if name == "" {
		var ok bool
		if name, ok = o.trace.FirstMoving(); !ok {
			return "", nil, fmt.Errorf("no recorded anchor moved; pass --track")
		}
	}
	vals, err := o.trace.Series(name, comp)
	return name, vals, err
}

func runHeadless(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(live)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := simulate(ctx, args, logger)
	if err != nil {
		return err
	}
	snap := out.sim.Snapshot()

	fmt.Printf("scene: %s\n", out.cfg.Scene.Name)
	fmt.Printf("completed in %v\n", out.elapsed)
	fmt.Printf("steps: %d  t=%.2fs  culled: %d\n\n", snap.Step, snap.Time, out.sim.Culled())

	names := make(map[sim.AnchorID]string, len(out.anchors))
	for name, id := range out.anchors {
		names[id] = name
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ANCHOR\tMODE\tMASS\tX\tY\tVX\tVY")
	for _, a := range snap.Anchors {
		name, ok := names[a.ID]
		if !ok {
			name = a.ID.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%.3g\t%.4f\t%.4f\t%.4f\t%.4f\n",
			name, a.Mode, a.Mass, a.Position.X, a.Position.Y, a.Velocity.X, a.Velocity.Y)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	values := out.metrics.Values()
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(values) {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}

	if track != "" {
		name, series, err := out.series(component)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(plot(series, fmt.Sprintf("%s.%s vs time", name, component), 10))
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// plot draws a series with asciigraph. NaN samples, left by removed
// anchors, are cut off.
func plot(series []float64, caption string, h int) string {
	for i, v := range series {
		if math.IsNaN(v) {
			series = series[:i]
			break
		}
	}
	if len(series) == 0 {
		return caption + ": no samples"
	}
	return asciigraph.Plot(series,
		asciigraph.Height(h),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tANCHORS\tSPRINGS\tGRAVITY")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		gravity := "off"
		if cfg.Gravity.Enabled {
			gravity = fmt.Sprintf("%.2f", cfg.Gravity.Y)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, len(cfg.Scene.Anchors), len(cfg.Scene.Springs), gravity)
	}
	return w.Flush()
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	quiet := log.New(io.Discard, "", 0)
	dts := []float64{0.001, 0.005, 0.01}

	fmt.Printf("benchmarking %s, %d runs of %d steps\n\n", cfg.Scene.Name, numRuns, benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tTIME\tSTEPS/SEC\tANCHORS\tDETERMINISTIC")

	for _, dt := range dts {
		run := cfg.Clone()
		run.Dt = dt
		build := func() (*sim.Simulation, error) {
			s, _, err := config.Build(run, sim.WithLogger(quiet))
			return s, err
		}

		start := time.Now()
		results, err := sim.NewEnsemble(build, numRuns).Run(ctx, benchSteps)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		total := benchSteps * len(results)
		fmt.Fprintf(w, "%.4fs\t%d\t%v\t%.0f\t%d\t%v\n",
			dt, total, elapsed.Round(time.Microsecond), float64(total)/elapsed.Seconds(),
			len(results[0].Final.Anchors), sim.Identical(results))
	}
	return w.Flush()
}

func renderSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	s, anchors, err := config.Build(cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}
	var rec *record.Recorder
	if track != "" {
		if _, ok := anchors[track]; !ok {
			return fmt.Errorf("unknown anchor %q", track)
		}
		rec = record.NewRecorder(map[string]sim.AnchorID{track: anchors[track]}, 1)
		s.AddObserver(rec)
	}
	for i := 0; i < svgSteps; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	snap := s.Snapshot()
	th := viz.GetTheme(theme)

	var out string
	switch {
	case rec != nil:
		samples, _ := rec.Trace().Track(track)
		pts := make([]physics.Vec2, 0, len(samples))
		for _, sample := range samples {
			if !sample.Pos.IsFinite() {
				break
			}
			pts = append(pts, sample.Pos)
		}
		out = export.TrajectoryToSVG(pts, width, height, string(th.Primary))
		if out == "" {
			return fmt.Errorf("track %q needs at least two samples; use --steps", track)
		}
	case braille:
		canvas := viz.NewCanvas(width/8, height/16)
		scene := viz.NewScene(viz.NewCamera(cfg.FPS))
		pw, ph := canvas.PixelSize()
		scene.Camera.Resize(pw, ph)
		scene.Camera.Fit(anchorPositions(snap))
		for i := 0; i < 600 && !scene.Camera.Settled(); i++ {
			scene.Camera.Update()
		}
		scene.Draw(canvas, snap)
		out = export.CanvasToSVG(canvas, th, 4)
	default:
		out = export.SnapshotToSVG(snap, width, height, th)
	}
	fmt.Println(out)
	return nil
}

func anchorPositions(snap sim.Snapshot) []physics.Vec2 {
	pts := make([]physics.Vec2, len(snap.Anchors))
	for i, a := range snap.Anchors {
		pts[i] = a.Position
	}
	return pts
}

func traceScene(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := simulate(ctx, args, logger)
	if err != nil {
		return err
	}
	switch format {
	case "json":
		return record.WriteJSON(os.Stdout, out.header(), out.trace)
	case "csv":
		return record.WriteCSV(os.Stdout, out.trace)
	}
	return fmt.Errorf("unknown format %q (json, csv)", format)
}

func analyzeScene(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := simulate(ctx, args, logger)
	if err != nil {
		return err
	}
	if len(out.trace.Times) < 2 {
		return fmt.Errorf("too few samples; raise --steps")
	}
	name, series, err := out.series(component)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", out.cfg.Scene.Name)
	fmt.Printf("track: %s.%s, %d samples\n\n", name, component, len(series))

	ps := analysis.PowerSpectrum(series)
	if len(ps) > 4 {
		ps = ps[:len(ps)/4]
	}
	fmt.Println(plot(ps, fmt.Sprintf("power spectrum (%s.%s)", name, component), 15))
	fmt.Println()

	dt := out.trace.Times[1] - out.trace.Times[0]
	freq, err := analysis.DominantFrequency(series, dt)
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
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := simulate(ctx, args, logger)
	if err != nil {
		return err
	}
	name, xs, err := out.series(xAxis)
	if err != nil {
		return err
	}
	ys, err := out.trace.Series(name, yAxis)
	if err != nil {
		return err
	}

	fmt.Printf("phase portrait: %s\n", out.cfg.Scene.Name)
	fmt.Printf("%s: %s vs %s\n\n", name, yAxis, xAxis)
	fmt.Print(analysis.PhasePortraitToASCII(analysis.NewPhasePortrait(xs, ys), 60, 20))

	if cross != "" {
		cs, err := out.trace.Series(name, cross)
		if err != nil {
			return err
		}
		section := analysis.NewPoincareSection(cs, xs, ys, 0)
		fmt.Printf("\npoincare section where %s crosses 0 (%d points)\n\n", cross, len(section.Points))
		fmt.Print(analysis.PoincareSectionToASCII(section, 60, 20))
	}
	return nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	if len(params) == 0 {
		return fmt.Errorf("give at least one --param name=from:to:n")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	names := make([]string, len(params))
	ranges := make([][]float64, len(params))
	combos := 1
	for i, p := range params {
		names[i], ranges[i], err = optim.ParseRange(p)
		if err != nil {
			return err
		}
		combos *= len(ranges[i])
	}

	fmt.Printf("sweeping %s: %d combinations of %d steps, minimising %s\n", cfg.Scene.Name, combos, sweepSteps, metric)
	start := time.Now()
	best, score, err := optim.NewGridSearch(names, ranges).Search(ctx, optim.SceneObjective(cfg, sweepSteps, metric))
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\nbest %s: %.6f\n", time.Since(start), metric, score)
	for _, name := range sortedKeys(best) {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}
