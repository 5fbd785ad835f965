package providers

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/9seconds/tracemap/tracelib"
)

type ipinfoResponse struct {
	Bogon bool   `json:"bogon"`
	Loc   string `json:"loc"`
}

type ipinfoProvider struct {
	authToken string
	client    tracelib.HTTPClient
}

func (i ipinfoProvider) Name() string {
	return NameIPInfo
}

func (i ipinfoProvider) Lookup(ctx context.Context, ip net.IP) (tracelib.ProviderLookupResult, error) {
	url := "https://ipinfo.io/" + ip.String()
	if i.authToken != "" {
		url += "?token=" + i.authToken
	}

	jsonResponse := ipinfoResponse{}

	if err := getJSON(ctx, i.client, url, &jsonResponse); err != nil {
		return tracelib.ProviderLookupResult{}, err
	}

	if jsonResponse.Bogon || jsonResponse.Loc == "" {
		return tracelib.ProviderLookupResult{}, tracelib.ErrNoCoordinates
	}

	return parseLoc(jsonResponse.Loc)
}

// parseLoc parses 'lat,lon' string.
func parseLoc(loc string) (tracelib.ProviderLookupResult, error) {
	chunks := strings.Split(loc, ",")
	if len(chunks) != 2 {
		return tracelib.ProviderLookupResult{}, fmt.Errorf("%w: %s", ErrIncorrectLocation, loc)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(chunks[0]), 64)
	if err != nil {
		return tracelib.ProviderLookupResult{}, fmt.Errorf("%w: %v", ErrIncorrectLocation, err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(chunks[1]), 64)
	if err != nil {
		return tracelib.ProviderLookupResult{}, fmt.Errorf("%w: %v", ErrIncorrectLocation, err)
	}

	return tracelib.ProviderLookupResult{
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

func NewIPInfo(client tracelib.HTTPClient, parameters map[string]string) tracelib.Provider {
	return ipinfoProvider{
		authToken: parameters["auth_token"],
		client:    client,
	}
}
