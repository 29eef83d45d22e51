package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/tempo/internal/analysis"
	"github.com/san-kum/tempo/internal/automation"
	"github.com/san-kum/tempo/internal/config"
	"github.com/san-kum/tempo/internal/export"
	"github.com/san-kum/tempo/internal/scene"
	"github.com/san-kum/tempo/internal/storage"
	"github.com/san-kum/tempo/internal/viz"
	"github.com/san-kum/tempo/internal/watch"
	"github.com/san-kum/tempo/pkg/ease"
	"github.com/san-kum/tempo/pkg/motion"
	"github.com/san-kum/tempo/pkg/ticker"
)

var (
	dataDir    string
	configFile string
	preset     string
	// play
	watchScene bool
	// plot / analyze
	object  string
	prop    string
	channel string
	path    bool
	// plot sizes in cells for terminal output, pixels for SVG
	plotWidth, plotHeight       int
	svgWidth, svgHeight         int
	previewWidth, previewHeight int
	// sample
	sampleFPS float64
	maxTime   float64
	// export / batch
	outFile string
	workers int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "tempo",
		Short:        "timeline animation engine",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tempo", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use a built-in scene instead of a file")

	playCmd := &cobra.Command{
		Use:   "play [scene]",
		Short: "play a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  playScene,
	}
	playCmd.Flags().BoolVar(&watchScene, "watch", false, "reload when the scene or its scripts change")

	plotCmd := &cobra.Command{
		Use:   "plot [scene]",
		Short: "plot sampled properties",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotScene,
	}
	plotCmd.Flags().StringVar(&object, "object", "", "object to plot (default: all)")
	plotCmd.Flags().StringVar(&prop, "prop", "", "property to plot (default: all)")
	plotCmd.Flags().BoolVar(&path, "path", false, "plot the object's x/y path instead")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	sampleCmd := &cobra.Command{
		Use:   "sample [scene]",
		Short: "sample a scene and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sampleScene,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [scene]",
		Short: "frequency analysis of sampled properties",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeScene,
	}
	analyzeCmd.Flags().StringVar(&channel, "channel", "", "object.property to analyze (default: summary of all)")

	for _, c := range []*cobra.Command{plotCmd, sampleCmd, analyzeCmd} {
		c.Flags().Float64Var(&sampleFPS, "fps", 0, "sample rate (default from config)")
		c.Flags().Float64Var(&maxTime, "max", 0, "longest span to sample in seconds (default from config)")
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run channels as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&channel, "channel", "", "object.property to draw (default: all)")
	exportSVGCmd.Flags().StringVar(&object, "object", "", "draw this object's x/y path instead")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "sample and save every scene listed in a batch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&workers, "workers", 4, "scenes sampled at once")

	easesCmd := &cobra.Command{
		Use:   "eases [ease]",
		Short: "list eases, or preview one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showEases,
	}
	easesCmd.Flags().IntVar(&previewWidth, "width", 40, "preview width")
	easesCmd.Flags().IntVar(&previewHeight, "height", 10, "preview height")
	easesCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the preview as SVG to this file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				sc, err := scene.Parse(config.GetPreset(name))
				if err != nil {
					return fmt.Errorf("preset %s: %w", name, err)
				}
				fmt.Printf("  %-10s %s\n", name, sc.Description)
			}
			return nil
		},
	}

	rootCmd.AddCommand(playCmd, plotCmd, sampleCmd, listCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, batchCmd, analyzeCmd, easesCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadScene reads the scene file named by args, or the --preset scene.
func loadScene(args []string) (*scene.Scene, error) {
	switch {
	case preset != "" && len(args) > 0:
		return nil, fmt.Errorf("give either a scene file or --preset, not both")
	case preset != "":
		data := config.GetPreset(preset)
		if data == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return scene.Parse(data)
	case len(args) == 1:
		return scene.Load(args[0])
	}
	return nil, fmt.Errorf("no scene: pass a scene file or --preset (available: %v)", config.ListPresets())
}

func newEngine(cfg *config.Config, logger motion.Logger) *motion.Engine {
	return motion.New(cfg.MotionConfig(),
		motion.WithLogger(logger),
		motion.WithTicker(ticker.New(cfg.TickerConfig(), nil)),
	)
}

func buildStage(cfg *config.Config, args []string, logger motion.Logger) (*scene.Stage, error) {
	sc, err := loadScene(args)
	if err != nil {
		return nil, err
	}
	e := newEngine(cfg, logger)
	st, err := scene.Build(e, sc, func(err error) { logger.Printf("%v", err) })
	if err != nil {
		e.Close()
		return nil, err
	}
	return st, nil
}

func stderrLogger() *log.Logger {
	return log.New(os.Stderr, "tempo: ", log.LstdFlags)
}

func sample(cfg *config.Config, args []string) (*storage.Run, error) {
	st, err := buildStage(cfg, args, stderrLogger())
	if err != nil {
		return nil, err
	}
	defer st.Engine.Close()
	defer st.Close()

	fps, limit := cfg.Player.SampleFPS, cfg.Player.MaxSample
	if sampleFPS > 0 {
		fps = sampleFPS
	}
	if maxTime > 0 {
		limit = maxTime
	}
	return storage.Sample(st, fps, limit)
}

func playScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	// Diagnostics go to a file while the player owns the terminal.
	logFile, err := tea.LogToFile(filepath.Join(dataDir, "play.log"), "tempo")
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := log.Default()

	var changes <-chan string
	if watchScene {
		if len(args) == 0 {
			return fmt.Errorf("--watch needs a scene file")
		}
		w, err := watch.New(filepath.Dir(args[0]))
		if err != nil {
			return err
		}
		defer w.Close()
		changes = w.Events
		go func() {
			for err := range w.Errors {
				logger.Printf("watch: %v", err)
			}
		}()
	}

	load := func() (*scene.Stage, error) { return buildStage(cfg, args, logger) }
	p, err := viz.NewPlayer(cfg.Player, load, changes)
	if err != nil {
		return err
	}
	return viz.Run(p)
}

func plotScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	run, err := sample(cfg, args)
	if err != nil {
		return err
	}

	if path {
		if object == "" {
			return fmt.Errorf("--path needs --object")
		}
		xs, err := run.Series(object + ".x")
		if err != nil {
			return err
		}
		ys, err := run.Series(object + ".y")
		if err != nil {
			return err
		}
		fmt.Printf("%s path (%.2fs)\n", object, run.Duration())
		fmt.Print(viz.PathPlot(xs, ys, plotWidth, plotHeight))
		return nil
	}

	var channels []string
	for _, c := range run.Channels {
		ch, err := scene.ParseChannel(c)
		if err != nil {
			return err
		}
		if (object == "" || ch.Object == object) && (prop == "" || ch.Property == prop) {
			channels = append(channels, c)
		}
	}
	if len(channels) == 0 {
		return fmt.Errorf("nothing to plot (channels: %v)", run.Channels)
	}

	for _, c := range channels {
		series, err := run.Series(c)
		if err != nil {
			return err
		}
		fmt.Println(viz.PlotSeries(series, c, plotWidth, plotHeight))
		fmt.Println()
	}
	return nil
}

func sampleScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	run, err := sample(cfg, args)
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(run)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d over %.2fs at %.0ffps\n", len(run.Times), run.Duration(), run.FPS)
	fmt.Printf("channels: %s\n", strings.Join(run.Channels, ", "))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tFPS\tSAMPLES\tCHANNELS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.0f\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.FPS,
			run.Samples,
			len(run.Channels),
		)
	}
	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(args[0], os.Stdout)
}

func analyzeScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	run, err := sample(cfg, args)
	if err != nil {
		return err
	}

	if channel == "" {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CHANNEL\tMIN\tMAX\tMEAN\tTRAVEL\tDOMINANT")
		for _, c := range run.Channels {
			series, err := run.Series(c)
			if err != nil {
				return err
			}
			s := analysis.Summarize(series)
			dominant := "-"
			if f, err := analysis.DominantFrequency(series, run.FPS); err == nil && f > 0 {
				dominant = fmt.Sprintf("%.3fHz", f)
			}
			fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%s\n", c, s.Min, s.Max, s.Mean, s.Travel, dominant)
		}
		return w.Flush()
	}

	series, err := run.Series(channel)
	if err != nil {
		return err
	}
	bins, err := analysis.Spectrum(series, run.FPS)
	if err != nil {
		return err
	}
	dominant, err := analysis.DominantFrequency(series, run.FPS)
	if err != nil {
		return err
	}

	powers := analysis.Powers(bins)
	if len(powers) > 100 {
		powers = powers[:100]
	}
	graph := asciigraph.Plot(powers,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", channel)),
	)
	fmt.Println(graph)
	fmt.Printf("\nsamples: %d at %.0ffps\n", len(series), run.FPS)
	fmt.Printf("resolution: %.4fHz\n", bins[1].Freq)
	fmt.Printf("dominant frequency: %.4fHz\n", dominant)
	if dominant > 0 {
		fmt.Printf("period: %.4fs\n", 1/dominant)
	}
	return nil
}

func showEases(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EASE\tVARIANTS")
		for _, name := range ease.Names() {
			fmt.Fprintf(w, "%s\t%s.in  %s.out  %s.inOut\n", name, name, name, name)
		}
		return w.Flush()
	}

	f, err := ease.Parse(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		return writeOut(export.EaseToSVG(f, 200, 400, 400))
	}
	fmt.Printf("%s\n", args[0])
	fmt.Print(viz.EaseCurve(f, previewWidth, previewHeight))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(args[0], os.Stdout)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	run, err := storage.New(dataDir).LoadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	switch {
	case object != "":
		xs, err := run.Series(object + ".x")
		if err != nil {
			return err
		}
		ys, err := run.Series(object + ".y")
		if err != nil {
			return err
		}
		svg, err = export.PathToSVG(xs, ys, svgWidth, svgHeight, export.Palette[0])
		if err != nil {
			return err
		}
	case channel != "":
		svg, err = export.RunToSVG(run, []string{channel}, svgWidth, svgHeight)
	default:
		svg, err = export.RunToSVG(run, run.Channels, svgWidth, svgHeight)
	}
	if err != nil {
		return err
	}
	return writeOut(svg)
}

func writeOut(s string) error {
	if outFile == "" {
		_, err := fmt.Print(s)
		return err
	}
	if err := os.WriteFile(outFile, []byte(s), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}

	runner := &automation.Runner{Config: cfg, Logger: stderrLogger(), Workers: workers}
	results := runner.Run(cmd.Context(), b)
	if err := automation.Save(store, results); err != nil {
		return err
	}

	failed := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tSCENE\tRUN\tSAMPLES\tERROR")
	for i, res := range results {
		name := res.Job.Scene
		if name == "" {
			name = "preset:" + res.Job.Preset
		}
		if res.Err != nil {
			failed++
			fmt.Fprintf(w, "%d\t%s\t-\t-\t%v\n", i+1, name, res.Err)
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t\n", i+1, name, res.RunID, len(res.Run.Times))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}
