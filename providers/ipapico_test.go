package providers_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/9seconds/tracemap/providers"
	"github.com/9seconds/tracemap/tracelib"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

type MockedIPAPICoTestSuite struct {
	MockedProviderTestSuite

	prov tracelib.Provider
}

func (suite *MockedIPAPICoTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPAPICo(suite.http, map[string]string{})
}

func (suite *MockedIPAPICoTestSuite) TestName() {
	suite.Equal(providers.NameIPAPICo, suite.prov.Name())
}

func (suite *MockedIPAPICoTestSuite) TestLookupFailed() {
	httpmock.RegisterResponder("GET",
		"https://ipapi.co/62.115.1.1/json/",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("62.115.1.1"))

	suite.Error(err)
}

func (suite *MockedIPAPICoTestSuite) TestLookupRateLimited() {
	httpmock.RegisterResponder("GET",
		"https://ipapi.co/62.115.1.1/json/",
		suite.RateLimitedResponder())

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("62.115.1.1"))

	var rateLimitErr *tracelib.RateLimitError

	suite.True(errors.As(err, &rateLimitErr))
}

func (suite *MockedIPAPICoTestSuite) TestLookupReserved() {
	httpmock.RegisterResponder("GET",
		"https://ipapi.co/10.0.0.1/json/",
		httpmock.NewStringResponder(http.StatusOK, `{
  "ip": "10.0.0.1",
  "error": true,
  "reason": "Reserved IP Address",
  "reserved": true
}`))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("10.0.0.1"))

	suite.Error(err)
}

func (suite *MockedIPAPICoTestSuite) TestOk() {
	httpmock.RegisterResponder("GET",
		"https://ipapi.co/62.115.1.1/json/",
		httpmock.NewStringResponder(http.StatusOK, `{
  "ip": "62.115.1.1",
  "city": "Stockholm",
  "country_code": "SE",
  "latitude": 59.3293,
  "longitude": 18.0686
}`))

	result, err := suite.prov.Lookup(context.Background(), net.ParseIP("62.115.1.1"))

	suite.NoError(err)
	suite.InDelta(59.3293, result.Latitude, 0.00001)
	suite.InDelta(18.0686, result.Longitude, 0.00001)
}

func (suite *MockedIPAPICoTestSuite) TestAuthToken() {
	prov := providers.NewIPAPICo(suite.http, map[string]string{"auth_token": "secret"})

	httpmock.RegisterResponderWithQuery("GET",
		"https://ipapi.co/62.115.1.1/json/",
		"key=secret",
		httpmock.NewStringResponder(http.StatusOK, `{"latitude": 1, "longitude": 2}`))

	result, err := prov.Lookup(context.Background(), net.ParseIP("62.115.1.1"))

	suite.NoError(err)
	suite.Equal(2.0, result.Longitude)
}

type IntegrationIPAPICoTestSuite struct {
	ProviderTestSuite

	prov tracelib.Provider
}

func (suite *IntegrationIPAPICoTestSuite) SetupTest() {
	suite.ProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPAPICo(suite.http, map[string]string{})
}

func (suite *IntegrationIPAPICoTestSuite) TestLookup() {
	result, err := suite.prov.Lookup(context.Background(), net.ParseIP("8.8.8.8"))

	suite.NoError(err)
	suite.NotZero(result.Latitude)
}

func TestIPAPICo(t *testing.T) {
	suite.Run(t, &MockedIPAPICoTestSuite{})
}

func TestIntegrationIPAPICo(t *testing.T) {
	skipIntegration(t)

	suite.Run(t, &IntegrationIPAPICoTestSuite{})
}
