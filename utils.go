package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/9seconds/tracemap/providers"
	"github.com/9seconds/tracemap/storage"
	"github.com/9seconds/tracemap/tracelib"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
)

type closerFunc func() error

func (c closerFunc) Close() error {
	return c()
}

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

// makeProviders returns providers in the configured order. Some of
// them hold resources, they are returned as closers.
func makeProviders(conf *config) ([]tracelib.Provider, []io.Closer, error) {
	rv := make([]tracelib.Provider, 0, len(conf.GetProviders()))
	closers := []io.Closer{}

	for _, v := range conf.GetProviders() {
		params := v.GetSpecificParameters()

		switch v.GetName() {
		case providers.NameIPAPI:
			rv = append(rv, providers.NewIPAPI(makeNewHTTPClient(v), params))
		case providers.NameIPAPICo:
			rv = append(rv, providers.NewIPAPICo(makeNewHTTPClient(v), params))
		case providers.NameIPInfo:
			rv = append(rv, providers.NewIPInfo(makeNewHTTPClient(v), params))
		case providers.NameKeyCDN:
			rv = append(rv, providers.NewKeyCDN(makeNewHTTPClient(v), params))
		case providers.NameMaxmindFile:
			prov, err := providers.NewMaxmindFile(params)
			if err != nil {
				closeAll(closers)

				return nil, nil, fmt.Errorf("cannot create maxmind_file provider: %w", err)
			}

			rv = append(rv, prov)
			closers = append(closers, prov)
		default:
			closeAll(closers)

			return nil, nil, fmt.Errorf("unsupported provider name: %s", v.GetName())
		}
	}

	return rv, closers, nil
}

func makeNewHTTPClient(conf configProvider) tracelib.HTTPClient {
	httpClient := &http.Client{
		Timeout: conf.GetHTTPTimeout(),
	}

	return tracelib.NewHTTPClient(httpClient,
		"tracemap/"+version,
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		conf.GetCircuitBreakerOpenThreshold(),
		conf.GetCircuitBreakerHalfOpenTimeout(),
		conf.GetCircuitBreakerResetFailuresTimeout())
}

// makeStore returns a persistent store wrapped with in-memory LRU.
func makeStore(ctx context.Context, fs afero.Fs, conf *config) (tracelib.Store, io.Closer, error) {
	var (
		store  tracelib.Store
		closer io.Closer
	)

	switch conf.Cache.GetBackend() {
	case CacheBackendPostgres:
		pgStore, err := storage.NewPostgresStore(ctx, conf.Cache.GetDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("cannot create postgres store: %w", err)
		}

		store = pgStore
		closer = closerFunc(func() error {
			pgStore.Close()

			return nil
		})
	default:
		fileStore := storage.NewFileStore(fs, conf.Cache.GetPath())
		store = fileStore
		closer = fileStore
	}

	cached, err := tracelib.NewCachingStore(store, conf.Cache.GetMemorySize())
	if err != nil {
		closer.Close()

		return nil, nil, err
	}

	return cached, closer, nil
}

func makeReferenceTables(fs afero.Fs, conf *config) (*tracelib.CityTable, *tracelib.AirportTable, error) {
	if conf.CitiesPath == "" || conf.AirportsPath == "" {
		return nil, nil, fmt.Errorf("cities_path and airports_path are required for hostname heuristics")
	}

	cities, err := tracelib.LoadCityTable(fs, conf.CitiesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load cities: %w", err)
	}

	airports, err := tracelib.LoadAirportTable(fs, conf.AirportsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load airports: %w", err)
	}

	return cities, airports, nil
}

func makeProbeOpts(conf *config) tracelib.ProbeOpts {
	return tracelib.ProbeOpts{
		Binary:     conf.Probe.Binary,
		MaxHops:    int(conf.Probe.MaxHops),
		Timeout:    conf.Probe.Timeout.Duration,
		Nameserver: conf.Probe.Nameserver,
	}
}

func makeHTTPHandler(tracemap *tracelib.Tracemap,
	prober tracelib.Prober,
	registry *prometheus.Registry,
	conf *config) http.Handler {
	opts := tracelib.HTTPHandlerOpts{
		Prober:      prober,
		CORSOrigins: conf.CORSOrigins,
	}

	if conf.Origin != nil {
		origin := tracelib.NewOriginHop(conf.Origin.Latitude, conf.Origin.Longitude)
		opts.Origin = &origin
	}

	router := chi.NewRouter()

	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Mount("/", tracelib.NewHTTPHandler(tracemap, opts))

	if !conf.BasicAuth.Enabled() {
		return router
	}

	return &basicAuthMiddleware{
		handler:  router,
		user:     []byte(conf.BasicAuth.User),
		password: []byte(conf.BasicAuth.Password),
	}
}

func closeAll(closers []io.Closer) {
	for _, v := range closers {
		v.Close()
	}
}
