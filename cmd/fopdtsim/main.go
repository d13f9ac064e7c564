package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/fopdtsim/internal/analysis"
	"github.com/san-kum/fopdtsim/internal/config"
	"github.com/san-kum/fopdtsim/internal/export"
	"github.com/san-kum/fopdtsim/internal/fopdt"
	"github.com/san-kum/fopdtsim/internal/metrics"
	"github.com/san-kum/fopdtsim/internal/viz"
)

var (
	verbose bool
	logger  *slog.Logger

	configFile string
	preset     string

	gain     float64
	tau      float64
	theta    float64
	method   string
	tauC     float64
	kp       float64
	ki       float64
	kd       float64
	pidMin   float64
	pidMax   float64
	t0       float64
	dt       float64
	tf       float64
	y0       float64
	setpoint float64

	scale     float64
	plot      bool
	format    string
	frameRate int
	width     int
	height    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fopdtsim",
		Short: "closed-loop pid simulation of a first-order plus dead-time process",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a step response and print metrics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addLoopFlags(runCmd)
	runCmd.Flags().Float64Var(&scale, "scale", 1, "extra scale factor for the printed gains (255 for 8-bit pwm)")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot the waveforms")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "compare tuning rules on a process",
		Args:  cobra.NoArgs,
		RunE:  tuneAll,
	}
	addProcessFlags(tuneCmd)

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "simulate and plot error, integral, controller and process output",
		Args:  cobra.NoArgs,
		RunE:  plotRun,
	}
	addLoopFlags(plotCmd)
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&height, "height", 10, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "simulate and write the trace to stdout",
		Args:  cobra.NoArgs,
		RunE:  exportRun,
	}
	addLoopFlags(exportCmd)
	exportCmd.Flags().StringVar(&format, "format", "csv", "output format (csv|json)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "frequency analysis of the feedback error",
		Args:  cobra.NoArgs,
		RunE:  analyzeRun,
	}
	addLoopFlags(analyzeCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "play back a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLoopFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-16s %s %v\n", name, cfg.Tuning.Method, cfg.Tuning.Args)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, tuneCmd, plotCmd, exportCmd, analyzeCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProcessFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&gain, "gain", config.DefaultGain, "process dc gain K")
	cmd.Flags().Float64Var(&tau, "tau", config.DefaultTimeConstant, "process time constant")
	cmd.Flags().Float64Var(&theta, "theta", config.DefaultDeadTime, "process dead time")
	cmd.Flags().Float64Var(&tauC, "tauc", config.DefaultTauC, "imc closed-loop time constant")
}

func addLoopFlags(cmd *cobra.Command) {
	addProcessFlags(cmd)
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "tuning rule (IMC|Cohen_Coon|Ziegler_Nichols|CHR|"+config.NoTuning+")")
	cmd.Flags().Float64Var(&kp, "kp", 0, "override proportional gain")
	cmd.Flags().Float64Var(&ki, "ki", 0, "override integral gain")
	cmd.Flags().Float64Var(&kd, "kd", 0, "override derivative gain")
	cmd.Flags().Float64Var(&pidMin, "pid-min", 0, "controller output lower bound")
	cmd.Flags().Float64Var(&pidMax, "pid-max", 1, "controller output upper bound")
	cmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "requested sampling period")
	cmd.Flags().Float64Var(&tf, "time", config.DefaultDuration, "end time")
	cmd.Flags().Float64Var(&y0, "y0", 0, "initial process output")
	cmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint")
}

// loadConfig layers preset, config file and changed flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	changed := func(name string, v *float64) *float64 {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			return nil
		}
		return v
	}

	o := config.Overrides{
		Gain:         changed("gain", &gain),
		TimeConstant: changed("tau", &tau),
		DeadTime:     changed("theta", &theta),
		TauC:         changed("tauc", &tauC),
		Kp:           changed("kp", &kp),
		Ki:           changed("ki", &ki),
		Kd:           changed("kd", &kd),
		PIDMin:       changed("pid-min", &pidMin),
		PIDMax:       changed("pid-max", &pidMax),
		T0:           changed("t0", &t0),
		Dt:           changed("dt", &dt),
		Tf:           changed("time", &tf),
		Y0:           changed("y0", &y0),
		Setpoint:     changed("setpoint", &setpoint),
	}
	if flags.Lookup("method") != nil && flags.Changed("method") {
		o.Method = &method
	}
	return config.Resolve(preset, configFile, o)
}

type result struct {
	cfg     *config.Config
	trace   *fopdt.Trace
	gains   fopdt.Gains
	elapsed time.Duration
}

func simulate(cmd *cobra.Command) (*result, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	loop := fopdt.New(fopdt.WithLogger(logger))
	if err := cfg.Apply(loop); err != nil {
		return nil, err
	}
	g, err := loop.Gains()
	if err != nil {
		return nil, err
	}

	sim := cfg.Simulation
	start := time.Now()
	tr, err := loop.Simulate(sim.T0, sim.Dt, sim.Tf, sim.Y0, sim.Setpoint)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	logger.Debug("simulation finished", "steps", tr.Len(), "lag", tr.Lag, "dt", tr.Dt, "elapsed", elapsed)
	return &result{cfg: cfg, trace: tr, gains: g, elapsed: elapsed}, nil
}

func evaluate(r *result) map[string]float64 {
	return metrics.Evaluate(r.trace, metrics.StepResponse(r.trace.Setpoint, r.cfg.Simulation.Tf)...)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	r, err := simulate(cmd)
	if err != nil {
		return err
	}

	g := r.gains
	fmt.Printf("Kp: %.6g  Ki: %.6g  Kd: %.6g\n", g.Kp, g.Ki, g.Kd)
	if scale != 1 {
		fmt.Printf("x%g  Kp: %.6g  Ki: %.6g  Kd: %.6g\n", scale, g.Kp*scale, g.Ki*scale, g.Kd*scale)
	}

	m := evaluate(r)
	fmt.Printf("steps: %d (lag %d, dt %.4g)\n", r.trace.Len(), r.trace.Lag, r.trace.Dt)
	fmt.Printf("Mp: %.3f %%\n", m["overshoot_pct"])
	fmt.Printf("yss - x: %.4f\n", m["steady_state_error"])
	fmt.Printf("control effort: %.4f\n", m["control_effort"])
	fmt.Printf("iae: %.4f\n", m["iae"])
	fmt.Printf("completed in %.3f ms\n", float64(r.elapsed.Microseconds())/1000)

	if plot {
		fmt.Println()
		fmt.Print(viz.Plot(r.trace, 0, 0))
	}
	return nil
}

func tuneAll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := fopdt.Process{
		Gain:         cfg.Process.Gain,
		TimeConstant: cfg.Process.TimeConstant,
		DeadTime:     cfg.Process.DeadTime,
	}

	imcTauC, ok := cfg.IMCTauC()
	if !ok {
		imcTauC = tauC
	}

	fmt.Println(viz.Title(fmt.Sprintf("K=%g  tau=%g  theta=%g", p.Gain, p.TimeConstant, p.DeadTime)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tKp\tKi\tKd\ttau_I\ttau_D")
	for _, m := range fopdt.Methods() {
		var targs []float64
		if m == fopdt.IMC {
			targs = []float64{imcTauC}
		}
		std, err := fopdt.TuneStandard(m, p, targs...)
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		g, err := fopdt.Tune(m, p, targs...)
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\n", m, g.Kp, g.Ki, g.Kd, std.TauI, std.TauD)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	r, err := simulate(cmd)
	if err != nil {
		return err
	}
	fmt.Print(viz.Plot(r.trace, width, height))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	r, err := simulate(cmd)
	if err != nil {
		return err
	}
	var m map[string]float64
	if format == "json" {
		m = evaluate(r)
	}
	return export.Write(os.Stdout, format, r.trace, r.gains, m)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	r, err := simulate(cmd)
	if err != nil {
		return err
	}

	fmt.Println("frequency analysis of the feedback error")
	period, ok := analysis.DominantPeriod(r.trace.E, r.trace.Dt)
	if !ok {
		fmt.Println("  no dominant oscillation")
	} else {
		fmt.Printf("  dominant period: %.4f s (%.5f Hz)\n", period, 1/period)
	}

	m := evaluate(r)
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		v := m[name]
		if math.IsNaN(v) {
			fmt.Printf("  %s: n/a\n", name)
			continue
		}
		fmt.Printf("  %s: %.6f\n", name, v)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	r, err := simulate(cmd)
	if err != nil {
		return err
	}
	title := "fopdt step response"
	if preset != "" {
		title = preset
	}
	return viz.RunLive(r.trace, r.gains, title, frameRate)
}
