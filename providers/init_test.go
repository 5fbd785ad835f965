package providers_test

import (
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/9seconds/tracemap/tracelib"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite

	http tracelib.HTTPClient
}

func (suite *ProviderTestSuite) SetupTest() {
	suite.http = tracelib.NewHTTPClient(&http.Client{},
		"test-agent",
		time.Millisecond,
		100,
		100,
		time.Minute,
		time.Minute)
}

type MockedProviderTestSuite struct {
	ProviderTestSuite
}

func (suite *MockedProviderTestSuite) SetupSuite() {
	httpmock.Activate()
}

func (suite *MockedProviderTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *MockedProviderTestSuite) TearDownTest() {
	httpmock.Reset()
}

func (suite *MockedProviderTestSuite) RateLimitedResponder() httpmock.Responder {
	resp := httpmock.NewStringResponse(http.StatusTooManyRequests, "")
	resp.Header.Set("Retry-After", "2")

	return httpmock.ResponderFromResponse(resp)
}

func skipIntegration(t *testing.T) {
	if testing.Short() || os.Getenv("TRACEMAP_INTEGRATION_TESTS") == "" {
		t.Skip("Set TRACEMAP_INTEGRATION_TESTS to run integration tests")
	}
}
