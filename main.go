package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/9seconds/tracemap/tracelib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

const shutdownTimeout = 10 * time.Second

var (
	version = "dev"

	app = kingpin.New(
		"tracemap",
		"Draw traceroute output on a map")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("TRACEMAP_DEBUG").
		Bool()
	heuristicBeforeAddress = app.Flag("heuristic-before-address",
		"Guess hop locations by hostnames before asking geolocation providers.").
		Default("true").
		Envar("TRACEMAP_HEURISTIC_BEFORE_ADDRESS").
		Bool()
	configPath = app.Arg("config-path", "Path to the config.").
			Required().
			String()
)

func main() {
	// .env is optional
	godotenv.Load() // nolint: errcheck

	app.Version(version)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}

	appLog := zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("event_name", "app").Logger()
	fs := afero.NewOsFs()

	conf, err := parseConfig(fs, *configPath)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Cannot parse config")
	}

	ctx, cancel := makeRootContext()
	defer cancel()

	store, storeCloser, err := makeStore(ctx, fs, conf)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Cannot create a store")
	}
	defer storeCloser.Close()

	provs, providerClosers, err := makeProviders(conf)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Cannot create providers")
	}
	defer closeAll(providerClosers)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics := tracelib.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		appLog.Fatal().Err(err).Msg("Cannot register metrics")
	}

	opts := tracelib.Opts{
		Store:     store,
		Providers: provs,
		Retry: tracelib.RetryConfig{
			Count: int(conf.Retry.Count),
			Delay: conf.Retry.Delay.Duration,
		},
		Logger:                 newLogger(os.Stderr, level),
		Metrics:                metrics,
		HeuristicBeforeAddress: *heuristicBeforeAddress,
		WorkerPoolSize:         conf.GetWorkerPoolSize(),
	}

	if opts.HeuristicBeforeAddress {
		opts.Cities, opts.Airports, err = makeReferenceTables(fs, conf)
		if err != nil {
			appLog.Fatal().Err(err).Msg("Cannot load reference tables")
		}

		appLog.Info().
			Int("cities", opts.Cities.Len()).
			Int("airports", opts.Airports.Len()).
			Msg("Reference tables are loaded")
	}

	tracemap, err := tracelib.NewTracemap(opts)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Cannot create tracemap")
	}
	defer tracemap.Shutdown()

	srv := &http.Server{
		Addr:              conf.GetListen(),
		Handler:           makeHTTPHandler(tracemap, tracelib.NewTracerouteProber(makeProbeOpts(conf)), registry, conf),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		srv.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	appLog.Info().Str("listen", conf.GetListen()).Msg("Start server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error().Err(err).Msg("Server has failed")
	}
}
