package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/9seconds/tracemap/tracelib"
	"github.com/oschwald/geoip2-golang"
)

// MaxmindFileProvider reads locations from a local mmdb file. Nobody
// updates this file for you.
type MaxmindFileProvider struct {
	reader *geoip2.Reader
}

func (m *MaxmindFileProvider) Name() string {
	return NameMaxmindFile
}

func (m *MaxmindFileProvider) Lookup(ctx context.Context, ip net.IP) (tracelib.ProviderLookupResult, error) {
	if err := ctx.Err(); err != nil {
		return tracelib.ProviderLookupResult{}, err
	}

	city, err := m.reader.City(ip)
	if err != nil {
		return tracelib.ProviderLookupResult{}, fmt.Errorf("cannot lookup ip: %w", err)
	}

	// absent records are decoded as zero values, accuracy radius is
	// never 0 for a real one.
	if city.Location.AccuracyRadius == 0 {
		return tracelib.ProviderLookupResult{}, tracelib.ErrNoCoordinates
	}

	return tracelib.ProviderLookupResult{
		Latitude:  city.Location.Latitude,
		Longitude: city.Location.Longitude,
	}, nil
}

func (m *MaxmindFileProvider) Close() error {
	return m.reader.Close()
}

func NewMaxmindFile(parameters map[string]string) (*MaxmindFileProvider, error) {
	path := parameters["path"]
	if path == "" {
		return nil, ErrDatabasePathIsRequired
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %s: %w", path, err)
	}

	return &MaxmindFileProvider{
		reader: reader,
	}, nil
}
