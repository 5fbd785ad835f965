package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/9seconds/tracemap/tracelib"
)

type ipapiResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

type ipapiProvider struct {
	client  tracelib.HTTPClient
	baseURL string
}

func (i ipapiProvider) Name() string {
	return NameIPAPI
}

func (i ipapiProvider) Lookup(ctx context.Context, ip net.IP) (tracelib.ProviderLookupResult, error) {
	jsonResponse := ipapiResponse{}

	if err := getJSON(ctx, i.client, i.baseURL+"/json/"+ip.String()+"?fields=status,message,lat,lon", &jsonResponse); err != nil {
		return tracelib.ProviderLookupResult{}, err
	}

	if jsonResponse.Status != "success" {
		return tracelib.ProviderLookupResult{}, fmt.Errorf("failed to geolocate: %s", jsonResponse.Message)
	}

	return coordinates(jsonResponse.Lat, jsonResponse.Lon)
}

// NewIPAPI returns a provider for ip-api.com. Free tier works only
// via plain HTTP.
func NewIPAPI(client tracelib.HTTPClient, parameters map[string]string) tracelib.Provider {
	baseURL := parameters["base_url"]
	if baseURL == "" {
		baseURL = "http://ip-api.com"
	}

	return ipapiProvider{
		client:  client,
		baseURL: baseURL,
	}
}
