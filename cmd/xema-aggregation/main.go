package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/meteocat-tools/xema-aggregation/internal/api/http"
	"github.com/meteocat-tools/xema-aggregation/internal/config"
	"github.com/meteocat-tools/xema-aggregation/internal/logging"
	"github.com/meteocat-tools/xema-aggregation/internal/report"
	"github.com/meteocat-tools/xema-aggregation/internal/scheduler"
	"github.com/meteocat-tools/xema-aggregation/internal/store"
	"github.com/meteocat-tools/xema-aggregation/internal/xema"
	"github.com/meteocat-tools/xema-aggregation/internal/xema/meteocat"
)

const usage = `Usage: xema-aggregation <command> [flags]

Commands:
  rainfall   download daily precipitation and store a JSON report with
             weekly/monthly/yearly aggregations
  wind       download daily wind speed/direction and store a CSV dataset
  serve      collect on a schedule and expose the latest report over HTTP

Run "xema-aggregation <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "rainfall":
		err = runRainfall(os.Args[2:])
	case "wind":
		err = runWind(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// sharedFlags holds the flags every command accepts.
type sharedFlags struct {
	apiKey        string
	startDate     string
	endDate       string
	network       string
	stationStatus string
	logLevel      string
}

func registerShared(fs *flag.FlagSet, sf *sharedFlags) {
	fs.StringVar(&sf.apiKey, "api-key", "", "Meteocat API key (or METEOCAT_API_KEY env var)")
	fs.StringVar(&sf.startDate, "start-date", "", "first day to download, YYYY-MM-DD (default: 1st of August of the current season)")
	fs.StringVar(&sf.endDate, "end-date", "", "last day to download, YYYY-MM-DD (default: today)")
	fs.StringVar(&sf.network, "network", "", "station network to query (default: XEMA)")
	fs.StringVar(&sf.stationStatus, "station-status", "", "optional station status filter (e.g. operativa)")
	fs.StringVar(&sf.logLevel, "log-level", "", "logging level: debug, info, warn, error")
}

// setup merges env config with shared flags and builds the common pieces.
func setup(sf sharedFlags) (*config.AppConfig, *slog.Logger, xema.CollectOptions, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, xema.CollectOptions{}, err
	}
	if sf.apiKey != "" {
		cfg.APIKey = sf.apiKey
	}
	if sf.network != "" {
		cfg.Network = sf.network
	}
	if sf.stationStatus != "" {
		cfg.StationStatus = sf.stationStatus
	}
	if sf.logLevel != "" {
		cfg.LogLevel = sf.logLevel
	}
	if cfg.APIKey == "" {
		return nil, nil, xema.CollectOptions{}, errors.New("an API key must be provided via --api-key or METEOCAT_API_KEY")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	today := xema.DateOf(time.Now())
	start, end, err := resolveRange(sf.startDate, sf.endDate, today)
	if err != nil {
		return nil, nil, xema.CollectOptions{}, err
	}

	opts := xema.CollectOptions{
		Network:       cfg.Network,
		StationStatus: cfg.StationStatus,
		Start:         start,
		End:           end,
		Concurrency:   cfg.Concurrency,
	}
	return cfg, log, opts, nil
}

// resolveRange applies the season defaults: the observation season starts
// on the 1st of August, so an unset start date means the most recent August
// 1st on or before today.
func resolveRange(startStr, endStr string, today xema.Date) (xema.Date, xema.Date, error) {
	start := seasonStart(today)
	end := today

	var err error
	if startStr != "" {
		if start, err = xema.ParseDate(startStr); err != nil {
			return xema.Date{}, xema.Date{}, err
		}
	}
	if endStr != "" {
		if end, err = xema.ParseDate(endStr); err != nil {
			return xema.Date{}, xema.Date{}, err
		}
	}
	if start.After(end.Time) {
		return xema.Date{}, xema.Date{}, fmt.Errorf("%w: %s > %s", xema.ErrInvalidRange, start, end)
	}
	return start, end, nil
}

func seasonStart(today xema.Date) xema.Date {
	augustFirst := xema.NewDate(today.Year(), time.August, 1)
	if today.Before(augustFirst.Time) {
		return xema.NewDate(today.Year()-1, time.August, 1)
	}
	return augustFirst
}

func newService(cfg *config.AppConfig, acc *store.RunAccumulator, log *slog.Logger) *xema.Service {
	client := meteocat.NewClient(meteocat.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		Backoff: meteocat.BackoffConfig{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
	}, log)
	return xema.NewService(client, acc, xema.DefaultRegistry(), log)
}

func runRainfall(args []string) error {
	fs := flag.NewFlagSet("rainfall", flag.ExitOnError)
	var sf sharedFlags
	registerShared(fs, &sf)
	variable := fs.String("variable-code", xema.VariablePrecipitation, "variable code to use for precipitation")
	output := fs.String("output", "", "destination file for the JSON payload (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return errors.New("--output is required")
	}

	cfg, log, opts, err := setup(sf)
	if err != nil {
		return err
	}
	opts.VariableCodes = []string{*variable}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	acc := store.NewRunAccumulator()
	svc := newService(cfg, acc, log)

	failed, err := svc.Collect(ctx, opts)
	if err != nil {
		return err
	}
	if failed > 0 {
		log.Warn("some stations were omitted from the report", "failed", failed)
	}

	doc := report.Assemble(acc.Reports(), opts.Start, opts.End)
	if err := report.WriteJSON(*output, doc); err != nil {
		return err
	}
	log.Info("stored rainfall report", "path", *output, "stations", doc.StationCount)
	return nil
}

func runWind(args []string) error {
	fs := flag.NewFlagSet("wind", flag.ExitOnError)
	var sf sharedFlags
	registerShared(fs, &sf)
	var variables stringList
	fs.Var(&variables, "variable", "wind variable code to download (repeatable; defaults to VV10m and DV10m)")
	output := fs.String("output", "data/wind_daily.csv", "output CSV path")
	withAggregates := fs.Bool("with-aggregates", false, "append weekly aggregate columns to each row")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, opts, err := setup(sf)
	if err != nil {
		return err
	}
	opts.VariableCodes = variables
	if len(opts.VariableCodes) == 0 {
		opts.VariableCodes = []string{xema.VariableWindSpeed, xema.VariableWindDirection}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	acc := store.NewRunAccumulator()
	svc := newService(cfg, acc, log)

	failed, err := svc.Collect(ctx, opts)
	if err != nil {
		return err
	}
	if failed > 0 {
		log.Warn("some stations were omitted from the dataset", "failed", failed)
	}

	doc := report.Assemble(acc.Reports(), opts.Start, opts.End)
	if err := report.WriteCSV(*output, doc, opts.VariableCodes, *withAggregates); err != nil {
		return err
	}
	log.Info("stored wind dataset", "path", *output, "stations", doc.StationCount)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var sf sharedFlags
	registerShared(fs, &sf)
	var variables stringList
	fs.Var(&variables, "variable", "variable code to collect (repeatable; defaults to precipitation and wind)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, _, err := setup(sf)
	if err != nil {
		return err
	}
	codes := []string(variables)
	if len(codes) == 0 {
		codes = []string{xema.VariablePrecipitation, xema.VariableWindSpeed, xema.VariableWindDirection}
	}

	acc := store.NewRunAccumulator()
	svc := newService(cfg, acc, log)

	collect := func(ctx context.Context) error {
		// The window is recomputed per run so a long-lived daemon keeps
		// tracking "today"; the range flags pin it when provided.
		today := xema.DateOf(time.Now())
		start, end, err := resolveRange(sf.startDate, sf.endDate, today)
		if err != nil {
			return err
		}
		opts := xema.CollectOptions{
			Network:       cfg.Network,
			StationStatus: cfg.StationStatus,
			VariableCodes: codes,
			Start:         start,
			End:           end,
			Concurrency:   cfg.Concurrency,
		}

		acc.Reset()
		failed, err := svc.Collect(ctx, opts)
		if err != nil {
			return err
		}
		if failed > 0 {
			log.Warn("some stations were omitted from the report", "failed", failed)
		}
		acc.SetDocument(report.Assemble(acc.Reports(), opts.Start, opts.End))
		return nil
	}

	sched := scheduler.New(cfg.CollectInterval, 30*time.Minute, collect, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "xema-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "xema-aggregation",
		})
	})

	httpapi.RegisterRoutes(app, acc)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()
	log.Info("serving reports", "port", cfg.Port, "interval", cfg.CollectInterval.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	return nil
}

// stringList implements flag.Value for repeatable string flags.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
