package providers_test

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/9seconds/tracemap/providers"
	"github.com/9seconds/tracemap/tracelib"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

type MockedIPInfoTestSuite struct {
	MockedProviderTestSuite

	prov tracelib.Provider
}

func (suite *MockedIPInfoTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPInfo(suite.http, map[string]string{})
}

func (suite *MockedIPInfoTestSuite) TestName() {
	suite.Equal(providers.NameIPInfo, suite.prov.Name())
}

func (suite *MockedIPInfoTestSuite) TestLookupFailed() {
	httpmock.RegisterResponder("GET",
		"https://ipinfo.io/8.8.8.8",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("8.8.8.8"))

	suite.Error(err)
}

func (suite *MockedIPInfoTestSuite) TestLookupBadJSON() {
	httpmock.RegisterResponder("GET",
		"https://ipinfo.io/8.8.8.8",
		httpmock.NewStringResponder(http.StatusOK, `{[`))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("8.8.8.8"))

	suite.Error(err)
}

func (suite *MockedIPInfoTestSuite) TestBogon() {
	httpmock.RegisterResponder("GET",
		"https://ipinfo.io/10.0.0.1",
		httpmock.NewStringResponder(http.StatusOK, `{"ip": "10.0.0.1", "bogon": true}`))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("10.0.0.1"))

	suite.ErrorIs(err, tracelib.ErrNoCoordinates)
}

func (suite *MockedIPInfoTestSuite) TestIncorrectLoc() {
	for _, v := range []string{"1", "a,b", "1,b", "1,2,3"} {
		httpmock.RegisterResponder("GET",
			"https://ipinfo.io/8.8.8.8",
			httpmock.NewStringResponder(http.StatusOK, `{"ip": "8.8.8.8", "loc": "`+v+`"}`))

		_, err := suite.prov.Lookup(context.Background(), net.ParseIP("8.8.8.8"))

		suite.ErrorIs(err, providers.ErrIncorrectLocation, v)
	}
}

func (suite *MockedIPInfoTestSuite) TestOk() {
	httpmock.RegisterResponder("GET",
		"https://ipinfo.io/8.8.8.8",
		httpmock.NewStringResponder(http.StatusOK, `{
  "ip": "8.8.8.8",
  "hostname": "dns.google",
  "anycast": true,
  "city": "Mountain View",
  "region": "California",
  "country": "US",
  "loc": "37.4056,-122.0775",
  "org": "AS15169 Google LLC",
  "postal": "94043",
  "timezone": "America/Los_Angeles"
}`))

	result, err := suite.prov.Lookup(context.Background(), net.ParseIP("8.8.8.8"))

	suite.NoError(err)
	suite.InDelta(37.4056, result.Latitude, 0.00001)
	suite.InDelta(-122.0775, result.Longitude, 0.00001)
}

func (suite *MockedIPInfoTestSuite) TestAuthToken() {
	prov := providers.NewIPInfo(suite.http, map[string]string{"auth_token": "secret"})

	httpmock.RegisterResponderWithQuery("GET",
		"https://ipinfo.io/8.8.8.8",
		"token=secret",
		httpmock.NewStringResponder(http.StatusOK, `{"loc": "1,2"}`))

	result, err := prov.Lookup(context.Background(), net.ParseIP("8.8.8.8"))

	suite.NoError(err)
	suite.Equal(tracelib.ProviderLookupResult{Latitude: 1, Longitude: 2}, result)
}

type IntegrationIPInfoTestSuite struct {
	ProviderTestSuite

	prov tracelib.Provider
}

func (suite *IntegrationIPInfoTestSuite) SetupTest() {
	suite.ProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPInfo(suite.http, map[string]string{})
}

func (suite *IntegrationIPInfoTestSuite) TestLookup() {
	result, err := suite.prov.Lookup(context.Background(), net.ParseIP("8.8.8.8"))

	suite.NoError(err)
	suite.NotZero(result.Latitude)
}

func TestIPInfo(t *testing.T) {
	suite.Run(t, &MockedIPInfoTestSuite{})
}

func TestIntegrationIPInfo(t *testing.T) {
	skipIntegration(t)

	suite.Run(t, &IntegrationIPInfoTestSuite{})
}
