package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"

	"github.com/san-kum/ltinorm/internal/analysis"
	"github.com/san-kum/ltinorm/internal/config"
	"github.com/san-kum/ltinorm/internal/export"
	"github.com/san-kum/ltinorm/internal/gramian"
	"github.com/san-kum/ltinorm/internal/l1norm"
	"github.com/san-kum/ltinorm/internal/logger"
	"github.com/san-kum/ltinorm/internal/lti"
	"github.com/san-kum/ltinorm/internal/storage"
	"github.com/san-kum/ltinorm/internal/tui"
	"github.com/san-kum/ltinorm/internal/viz"
)

// resolveConfig picks the system description: --config wins over --preset,
// which wins over a positional preset name. With none of them the default
// alpha filter is used.
func resolveConfig(args []string) (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	name := preset
	if name == "" && len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	return cfg, nil
}

// applyFlags lets explicitly set CLI flags override the config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("rtol") {
		cfg.RelTol = relTol
	}
	if flags.Changed("max-length") {
		cfg.MaxLength = maxLength
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("norm") {
		cfg.Norm = normName
	}
	if logLevel == "" {
		if lvl, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
			logger.SetLevel(lvl)
		}
	}
}

func loadSystem(cmd *cobra.Command, args []string) (*config.Config, *lti.System, error) {
	cfg, err := resolveConfig(args)
	if err != nil {
		return nil, nil, err
	}
	applyFlags(cmd, cfg)

	sys, err := cfg.System.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", cfg.Name, err)
	}
	logger.DebugKV(cmd.Context(), "system loaded", "name", cfg.Name, "kind", cfg.System.Kind)
	return cfg, sys, nil
}

func runGram(cmd *cobra.Command, args []string) error {
	cfg, sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	r, err := gramian.ControlGram(sys)
	if err != nil {
		return err
	}
	o, err := gramian.ObserveGram(sys)
	if err != nil {
		return err
	}

	fmt.Printf("system: %s\n\n", cfg.Name)
	fmt.Println(viz.RenderMatrix("controllability gramian", dense(r)))
	fmt.Println(viz.RenderMatrix("observability gramian", dense(o)))
	return nil
}

func runNorm(cmd *cobra.Command, args []string) error {
	cfg, sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	norms, err := gramian.StateNorm(sys, gramian.Norm(cfg.Norm))
	if err != nil {
		return err
	}
	fmt.Print(viz.RenderValues(fmt.Sprintf("%s state norms (%s)", cfg.Name, cfg.Norm), norms))
	return nil
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	b, err := gramian.BalancedTransformation(sys)
	if err != nil {
		return err
	}
	balanced, err := sys.Transform(b.T, b.Tinv)
	if err != nil {
		return err
	}

	fmt.Printf("system: %s\n\n", cfg.Name)
	fmt.Println(viz.RenderValues("singular values", b.S))
	fmt.Println(viz.RenderMatrix("T", dense(b.T)))
	fmt.Println(viz.RenderMatrix("T⁻¹", dense(b.Tinv)))
	fmt.Println(viz.RenderMatrix("balanced A", dense(balanced.A())))
	fmt.Println(viz.RenderMatrix("balanced B", dense(balanced.B())))
	fmt.Println(viz.RenderMatrix("balanced C", dense(balanced.C())))
	return nil
}

func runHankel(cmd *cobra.Command, args []string) error {
	cfg, sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	hsv, err := gramian.Hankel(sys)
	if err != nil {
		return err
	}
	fmt.Print(viz.RenderValues(cfg.Name+" Hankel singular values", hsv))
	return nil
}

func runL1(cmd *cobra.Command, args []string) error {
	cfg, sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	var history []l1norm.Iteration
	observe := func(it l1norm.Iteration) {
		history = append(history, it)
		if verbose {
			fmt.Printf("  %3d  n=%-7d T=%-10.4g [%.10g, %.10g]  ±%.2e\n",
				it.Index, it.Samples, it.Horizon, it.Lower, it.Upper, it.HalfWidth)
		}
	}

	start := time.Now()
	res, err := l1norm.Norm(sys,
		l1norm.WithRelTol(cfg.RelTol),
		l1norm.WithMaxLength(cfg.MaxLength),
		l1norm.WithLogger(logger.FromContext(cmd.Context()).With("system", cfg.Name)),
		l1norm.WithObserver(observe),
	)
	if err != nil {
		return err
	}
	logger.InfoKV(cmd.Context(), "l1 norm bounded",
		"system", cfg.Name, "estimate", res.Estimate, "elapsed", time.Since(start))

	fmt.Printf("system: %s\n\n", cfg.Name)
	fmt.Println(viz.RenderL1(res))

	if plotPath == "" {
		return nil
	}
	p, err := export.BoundsPlot(cfg.Name+" L1 bounds", history)
	if err != nil {
		return err
	}
	if err := export.Save(p, plotPath); err != nil {
		return err
	}
	fmt.Printf("bound history written to %s\n", plotPath)
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	report, err := analysis.Analyze(cmd.Context(), cfg.Name, sys, analysis.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	report.Description = cfg.Description

	fmt.Print(viz.RenderReport(report, viz.DefaultWidth))

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(report)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfgs, err := batchConfigs(args)
	if err != nil {
		return err
	}

	opts := analysis.DefaultOptions()
	if cmd.Flags().Changed("rtol") {
		opts.RelTol = relTol
	}
	if cmd.Flags().Changed("max-length") {
		opts.MaxLength = maxLength
	}

	systems := make([]analysis.Named, 0, len(cfgs))
	for _, cfg := range cfgs {
		sys, err := cfg.System.Build()
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.Name, err)
		}
		systems = append(systems, analysis.Named{Name: cfg.Name, Description: cfg.Description, System: sys})
	}

	start := time.Now()
	reports, err := analysis.Batch(cmd.Context(), systems, opts)
	if err != nil {
		return err
	}
	logger.InfoKV(cmd.Context(), "batch finished", "systems", len(reports), "elapsed", time.Since(start))

	if err := writeBatchTable(os.Stdout, reports); err != nil {
		return err
	}

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	for _, r := range reports {
		runID, err := st.Save(r)
		if err != nil {
			return fmt.Errorf("%s: %w", r.Name, err)
		}
		fmt.Printf("saved %s\n", runID)
	}
	return nil
}

// batchConfigs reads --file when given, otherwise the named presets, or all
// presets when none are named.
func batchConfigs(args []string) ([]*config.Config, error) {
	if batchFile != "" {
		b, err := config.LoadBatch(batchFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load batch: %w", err)
		}
		return b.Expand()
	}

	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}
	return (&config.Batch{Presets: names}).Expand()
}

func writeBatchTable(out io.Writer, reports []*analysis.Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tSTATES\tSTABLE\tH2\tHANKEL[0]\tL1\t±")

	for _, r := range reports {
		kind := "analog"
		if !r.Analog {
			kind = "discrete"
		}
		hsv := "-"
		if len(r.Hankel) > 0 {
			hsv = strconv.FormatFloat(r.Hankel[0], 'g', 6, 64)
		}
		l1, hw := "-", "-"
		if r.L1 != nil {
			l1 = strconv.FormatFloat(r.L1.Estimate, 'g', 10, 64)
			hw = strconv.FormatFloat(r.L1.HalfWidth, 'e', 1, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%.6g\t%s\t%s\t%s\n",
			r.Name, kind, r.States, r.Stable, r.H2, hsv, l1, hw)
	}

	return w.Flush()
}

func runList(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	fmt.Print(viz.RenderRuns(runs))
	return nil
}

func loadRun(runID string) (*analysis.Report, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	values, times, err := st.LoadResponse(runID)
	if err != nil {
		return nil, nil, err
	}
	report := meta.Report
	report.Response = values
	return &report, times, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	report, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\n\n", args[0])
	fmt.Print(viz.RenderReport(report, viz.DefaultWidth))
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	report, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(report.Response) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("system: %s\n", report.Name)
	fmt.Printf("samples: %d\n\n", len(report.Response))
	fmt.Println(viz.PlotResponse(report.Response, report.Step, 80))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	runID := args[0]
	report, times, err := loadRun(runID)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return withOutput(func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		})
	case "csv":
		return withOutput(func(w io.Writer) error {
			return writeResponseCSV(w, times, report.Response)
		})
	}

	path := outPath
	if path == "" {
		path = runID + "." + format
	}

	var p *plot.Plot
	switch kind {
	case "response":
		p, err = export.ResponsePlot(report.Name+" impulse response", times, report.Response)
	case "hankel":
		p, err = export.HankelPlot(report.Name+" Hankel singular values", report.Hankel)
	default:
		return fmt.Errorf("unknown plot kind %q (response, hankel)", kind)
	}
	if err != nil {
		return err
	}
	if err := export.Save(p, path); err != nil {
		return err
	}

	fmt.Printf("exported to %s\n", path)
	return nil
}

// withOutput writes to --out when set, otherwise to stdout.
func withOutput(write func(io.Writer) error) error {
	if outPath == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeResponseCSV(out io.Writer, times, values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"time", "response"}); err != nil {
		return err
	}
	for i := range values {
		row := []string{
			strconv.FormatFloat(times[i], 'g', -1, 64),
			strconv.FormatFloat(values[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func runWatch(cmd *cobra.Command, args []string) error {
	settings := tui.Settings{}
	if cmd.Flags().Changed("rtol") {
		settings.RelTol = relTol
	}
	if cmd.Flags().Changed("max-length") {
		settings.MaxLength = maxLength
	}

	if configFile == "" && preset == "" && len(args) == 0 {
		return tui.Run(tui.NewMenu(settings))
	}

	cfg, sys, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	if settings.RelTol == 0 {
		settings.RelTol = cfg.RelTol
	}
	if settings.MaxLength == 0 {
		settings.MaxLength = cfg.MaxLength
	}
	return tui.Run(tui.NewWatch(cfg.Name, sys, settings))
}

func runPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	fmt.Print(viz.RenderPresets(config.ListPresets(), func(name string) string {
		return config.Presets[name].Description
	}))
	return nil
}

func dense(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
