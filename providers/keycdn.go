package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/9seconds/tracemap/tracelib"
)

type keycdnResponse struct {
	Status string `json:"status"`
	Data   struct {
		Geo struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"geo"`
	} `json:"data"`
}

type keycdnProvider struct {
	client tracelib.HTTPClient
}

func (k keycdnProvider) Name() string {
	return NameKeyCDN
}

func (k keycdnProvider) Lookup(ctx context.Context, ip net.IP) (tracelib.ProviderLookupResult, error) {
	jsonResponse := keycdnResponse{}

	if err := getJSON(ctx, k.client, "https://tools.keycdn.com/geo.json?host="+ip.String(), &jsonResponse); err != nil {
		return tracelib.ProviderLookupResult{}, err
	}

	if jsonResponse.Status != "success" {
		return tracelib.ProviderLookupResult{}, fmt.Errorf("failed to geolocate: %s", jsonResponse.Status)
	}

	return coordinates(jsonResponse.Data.Geo.Latitude, jsonResponse.Data.Geo.Longitude)
}

func NewKeyCDN(client tracelib.HTTPClient, _ map[string]string) tracelib.Provider {
	return keycdnProvider{
		client: client,
	}
}
