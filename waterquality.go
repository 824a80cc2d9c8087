// Fuzzy water quality service

package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/mmcloughlin/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	gplot "gonum.org/v1/plot"

	"example.com/water-quality/base/zaplog"
	"example.com/water-quality/benchmark"

	"example.com/water-quality/core/config"
	"example.com/water-quality/core/engine"
	"example.com/water-quality/core/server"
	"example.com/water-quality/core/simulation"
	"example.com/water-quality/core/surface"
	"example.com/water-quality/core/water"

	"example.com/water-quality/driver/console"
	"example.com/water-quality/driver/echarts"
	"example.com/water-quality/driver/plot"
)

var (
	log *zap.Logger
)

func initLogger(verbose bool) {
	var err error
	log, err = zaplog.New(verbose)
	if err != nil {
		panic(err)
	}
	zaplog.SetLogger(log)
}

func runMonitor(log *zap.Logger, addr string) {
	http.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(addr, nil)
	log.Fatal("failed to serve metrics", zap.Error(err))
}

func loadConfig(configFile string) config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	return cfg
}

func newSystem() *engine.System {
	sys, err := water.NewSystem()
	if err != nil {
		log.Fatal("failed to build control system", zap.Error(err))
	}
	return sys
}

func sweep(ctx context.Context, sys *engine.System, cfg config.Config) *surface.Grid {
	ph, _ := sys.Registry().Lookup(water.PH)
	hardness, _ := sys.Registry().Lookup(water.Hardness)
	g, err := surface.Sweep(ctx,
		surface.Evaluator(sys, water.PH, water.Hardness, water.Quality),
		surface.Linspace(ph.Min(), ph.Max(), cfg.Surface.Points),
		surface.Linspace(hardness.Min(), hardness.Max(), cfg.Surface.Points),
		cfg.Surface.Workers,
		surface.WithLogger(log),
	)
	if err != nil {
		log.Fatal("failed to compute surface", zap.Error(err))
	}
	if len(g.Failed) != 0 {
		log.Info("surface has undefined points", zap.Int("count", len(g.Failed)))
	}
	return g
}

func plotPath(cfg config.Config, name string) string {
	return filepath.Join(cfg.Plot.Dir, name+"."+cfg.Plot.Format)
}

func savePlot(cfg config.Config, p *gplot.Plot, name string) {
	path := plotPath(cfg, name)
	err := plot.Save(p, cfg.Plot.WidthCM, cfg.Plot.HeightCM, path)
	if err != nil {
		log.Fatal("failed to save plot", zap.String("path", path), zap.Error(err))
	}
	log.Info("saved plot", zap.String("path", path))
}

func plotMemberships(cfg config.Config, sys *engine.System) {
	var ps []*gplot.Plot
	for _, v := range sys.Registry().Variables() {
		p, err := plot.Membership(v)
		if err != nil {
			log.Fatal("failed to plot membership functions", zap.String("variable", v.Name()), zap.Error(err))
		}
		savePlot(cfg, p, v.Name())
		ps = append(ps, p)
	}
	path := plotPath(cfg, "memberships")
	err := plot.Tile(ps, cfg.Plot.WidthCM, cfg.Plot.HeightCM, path)
	if err != nil {
		log.Fatal("failed to save plot", zap.String("path", path), zap.Error(err))
	}
	log.Info("saved plot", zap.String("path", path))
}

func setInputs(sim *simulation.Simulation, ph, hardness float64) {
	err := sim.SetInput(water.PH, ph)
	if err != nil {
		log.Fatal("invalid input", zap.Error(err))
	}
	err = sim.SetInput(water.Hardness, hardness)
	if err != nil {
		log.Fatal("invalid input", zap.Error(err))
	}
}

func plotResult(cfg config.Config, sys *engine.System, res *engine.Result) error {
	for _, v := range sys.Outputs() {
		p, err := plot.Output(v, res)
		if err != nil {
			return err
		}
		savePlot(cfg, p, v.Name()+"_result")
	}
	return nil
}

func plotSurface(cfg config.Config, g *surface.Grid) {
	p, err := plot.Surface(g, water.Quality, water.PH, water.Hardness)
	if err != nil {
		log.Fatal("failed to plot surface", zap.Error(err))
	}
	savePlot(cfg, p, "surface")
}

func runCheck(configFile string, withPlots bool) {
	cfg := loadConfig(configFile)
	sys := newSystem()
	l := &console.Loop{
		Log: log,
		Sim: simulation.New(log, sys),
		Prompts: []console.Prompt{
			{Variable: water.PH, Name: "pH"},
			{Variable: water.Hardness, Name: "hardness", Unit: "mg/L"},
		},
		Output:  water.Quality,
		Verdict: cfg.Verdict,
	}
	if withPlots {
		l.Checked = func(res *engine.Result) error {
			return plotResult(cfg, sys, res)
		}
	}
	err := l.Run(os.Stdin, os.Stdout)
	if err != nil {
		log.Fatal("failed to run check", zap.Error(err))
	}
	if withPlots {
		fmt.Println("Showing Fuzzy Sets..")
		plotMemberships(cfg, sys)
		fmt.Println("Showing 3D Surface Plot..")
		plotSurface(cfg, sweep(context.Background(), sys, cfg))
	}
}

func runEval(configFile string, ph, hardness float64) {
	cfg := loadConfig(configFile)
	sim := simulation.New(log, newSystem())
	setInputs(sim, ph, hardness)
	out, err := sim.Compute()
	if err != nil {
		log.Fatal("failed to compute water quality", zap.Error(err))
	}
	q := out[water.Quality]
	fmt.Printf("Water Quality: %.2f%%\n", q)
	fmt.Println(cfg.Verdict.Message(q))
}

func runPlot(configFile, outDir, format string, ph, hardness float64) {
	cfg := loadConfig(configFile)
	if outDir != "" {
		cfg.Plot.Dir = outDir
	}
	if format != "" {
		cfg.Plot.Format = format
	}
	err := cfg.Validate()
	if err != nil {
		log.Fatal("invalid plot settings", zap.Error(err))
	}
	sys := newSystem()
	plotMemberships(cfg, sys)
	if !math.IsNaN(ph) && !math.IsNaN(hardness) {
		sim := simulation.New(log, sys)
		setInputs(sim, ph, hardness)
		_, err = sim.Compute()
		if err != nil {
			log.Fatal("failed to compute water quality", zap.Error(err))
		}
		err = plotResult(cfg, sys, sim.Result())
		if err != nil {
			log.Fatal("failed to plot result", zap.Error(err))
		}
	}
	plotSurface(cfg, sweep(context.Background(), sys, cfg))
}

func runSurface(configFile string, points int, outFile string) {
	cfg := loadConfig(configFile)
	if points != 0 {
		cfg.Surface.Points = points
	}
	if outFile != "" {
		cfg.Surface.Output = outFile
	}
	err := cfg.Validate()
	if err != nil {
		log.Fatal("invalid surface settings", zap.Error(err))
	}
	sys := newSystem()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g := sweep(ctx, sys, cfg)

	f, err := os.Create(cfg.Surface.Output)
	if err != nil {
		log.Fatal("failed to create file", zap.String("path", cfg.Surface.Output), zap.Error(err))
	}
	defer f.Close()
	var cs []components.Charter
	for _, v := range sys.Registry().Variables() {
		line, err := echarts.Membership(v)
		if err != nil {
			log.Fatal("failed to chart membership functions", zap.Error(err))
		}
		cs = append(cs, line)
	}
	cs = append(cs, echarts.Surface(g, "Water quality", water.PH, water.Hardness, water.Quality))
	err = echarts.Render(f, "Fuzzy Water Quality", cs...)
	if err != nil {
		log.Fatal("failed to render surface", zap.Error(err))
	}
	log.Info("saved surface", zap.String("path", cfg.Surface.Output))
}

func runBenchmark(configFile string, goroutines, requests int, p *profile.Profile) {
	cfg := loadConfig(configFile)
	if goroutines != 0 {
		cfg.Benchmark.Goroutines = goroutines
	}
	if requests != 0 {
		cfg.Benchmark.Requests = requests
	}
	sys := newSystem()
	defer p.Start().Stop()
	_, err := benchmark.Run(log, os.Stdout, sys, cfg.Benchmark.Goroutines, cfg.Benchmark.Requests)
	if err != nil {
		log.Fatal("failed to run benchmark", zap.Error(err))
	}
}

func runServer(configFile string) {
	cfg := loadConfig(configFile)
	sys := newSystem()
	s, err := server.New(log, sys, server.Options{
		CacheSize:     cfg.Server.CacheSize,
		Verdict:       &cfg.Verdict,
		VerdictOutput: water.Quality,
		Registerer:    prometheus.DefaultRegisterer,
	})
	if err != nil {
		log.Fatal("failed to create server", zap.Error(err))
	}
	lns, err := server.Listen(cfg.Server.ListenAddr, cfg.Server.NumListeners)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}
	go runMonitor(log, cfg.Server.MetricsAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = server.Serve(ctx, log, s.Handler(), lns)
	if err != nil {
		log.Fatal("failed to serve", zap.Error(err))
	}
}

func exitWithUsage() {
	fmt.Println("<usage>")
	os.Exit(1)
}

func main() {
	var (
		verbose    bool
		configFile string
		withPlots  bool
		ph         float64
		hardness   float64
		outDir     string
		outFile    string
		format     string
		points     int
		goroutines int
		requests   int
	)

	checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
	evalFlags := flag.NewFlagSet("eval", flag.ExitOnError)
	plotFlags := flag.NewFlagSet("plot", flag.ExitOnError)
	surfaceFlags := flag.NewFlagSet("surface", flag.ExitOnError)
	benchmarkFlags := flag.NewFlagSet("benchmark", flag.ExitOnError)
	serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)

	checkFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	checkFlags.StringVar(&configFile, "config", "", "Config file")
	checkFlags.BoolVar(&withPlots, "plot", false, "Save result, membership and surface plots")

	evalFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	evalFlags.StringVar(&configFile, "config", "", "Config file")
	evalFlags.Float64Var(&ph, "ph", math.NaN(), "pH value")
	evalFlags.Float64Var(&hardness, "hardness", math.NaN(), "Hardness value in mg/L")

	plotFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	plotFlags.StringVar(&configFile, "config", "", "Config file")
	plotFlags.StringVar(&outDir, "out", "", "Output directory")
	plotFlags.StringVar(&format, "format", "", "Output format")
	plotFlags.Float64Var(&ph, "ph", math.NaN(), "pH value of a reading to plot")
	plotFlags.Float64Var(&hardness, "hardness", math.NaN(), "Hardness value of a reading to plot")

	surfaceFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	surfaceFlags.StringVar(&configFile, "config", "", "Config file")
	surfaceFlags.IntVar(&points, "points", 0, "Number of points per axis")
	surfaceFlags.StringVar(&outFile, "out", "", "Output HTML file")

	benchmarkFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	benchmarkFlags.StringVar(&configFile, "config", "", "Config file")
	benchmarkFlags.IntVar(&goroutines, "goroutines", 0, "Number of concurrent simulations")
	benchmarkFlags.IntVar(&requests, "requests", 0, "Number of inferences per simulation")
	prof := profile.New(profile.CPUProfile, profile.MemProfile)
	prof.SetFlags(benchmarkFlags)

	serveFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	serveFlags.StringVar(&configFile, "config", "", "Config file")

	if len(os.Args) < 2 {
		exitWithUsage()
	}

	switch os.Args[1] {
	case checkFlags.Name():
		err := checkFlags.Parse(os.Args[2:])
		if err != nil || checkFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runCheck(configFile, withPlots)
	case evalFlags.Name():
		err := evalFlags.Parse(os.Args[2:])
		if err != nil || evalFlags.NArg() != 0 {
			exitWithUsage()
		}
		if math.IsNaN(ph) || math.IsNaN(hardness) {
			exitWithUsage()
		}
		initLogger(verbose)
		runEval(configFile, ph, hardness)
	case plotFlags.Name():
		err := plotFlags.Parse(os.Args[2:])
		if err != nil || plotFlags.NArg() != 0 {
			exitWithUsage()
		}
		if math.IsNaN(ph) != math.IsNaN(hardness) {
			exitWithUsage()
		}
		initLogger(verbose)
		runPlot(configFile, outDir, format, ph, hardness)
	case surfaceFlags.Name():
		err := surfaceFlags.Parse(os.Args[2:])
		if err != nil || surfaceFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runSurface(configFile, points, outFile)
	case benchmarkFlags.Name():
		err := benchmarkFlags.Parse(os.Args[2:])
		if err != nil || benchmarkFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runBenchmark(configFile, goroutines, requests, prof)
	case serveFlags.Name():
		err := serveFlags.Parse(os.Args[2:])
		if err != nil || serveFlags.NArg() != 0 {
			exitWithUsage()
		}
		if configFile == "" {
			exitWithUsage()
		}
		initLogger(verbose)
		runServer(configFile)
	case "x":
		runX()
	default:
		exitWithUsage()
	}
}
