package providers

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/9seconds/tracemap/tracelib"
)

type ipapicoResponse struct {
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type ipapicoProvider struct {
	client    tracelib.HTTPClient
	authToken string
}

func (i ipapicoProvider) Name() string {
	return NameIPAPICo
}

func (i ipapicoProvider) Lookup(ctx context.Context, ip net.IP) (tracelib.ProviderLookupResult, error) {
	jsonResponse := ipapicoResponse{}

	if err := getJSON(ctx, i.client, i.buildURL(ip), &jsonResponse); err != nil {
		return tracelib.ProviderLookupResult{}, err
	}

	if jsonResponse.Error {
		return tracelib.ProviderLookupResult{}, fmt.Errorf("failed to geolocate: %s", jsonResponse.Reason)
	}

	return coordinates(jsonResponse.Latitude, jsonResponse.Longitude)
}

func (i ipapicoProvider) buildURL(ip net.IP) string {
	u := url.URL{
		Scheme: "https",
		Host:   "ipapi.co",
		Path:   "/" + ip.String() + "/json/",
	}

	if i.authToken != "" {
		u.RawQuery = url.Values{"key": []string{i.authToken}}.Encode()
	}

	return u.String()
}

func NewIPAPICo(client tracelib.HTTPClient, parameters map[string]string) tracelib.Provider {
	return ipapicoProvider{
		client:    client,
		authToken: parameters["auth_token"],
	}
}
