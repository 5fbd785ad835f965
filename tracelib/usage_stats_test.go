package tracelib_test

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/9seconds/tracemap/tracelib"
	"github.com/stretchr/testify/suite"
)

type UsageStatsTestSuite struct {
	suite.Suite

	u *tracelib.UsageStats
}

func (suite *UsageStatsTestSuite) SetupTest() {
	suite.u = &tracelib.UsageStats{Name: "ipapi"}
}

func (suite *UsageStatsTestSuite) Marshal() map[string]interface{} {
	data, err := json.Marshal(suite.u)

	suite.Require().NoError(err)

	rv := map[string]interface{}{}

	suite.Require().NoError(json.Unmarshal(data, &rv))

	return rv
}

func (suite *UsageStatsTestSuite) TestEmpty() {
	data := suite.Marshal()

	suite.Equal("ipapi", data["name"])
	suite.EqualValues(0, data["last_used"])
	suite.EqualValues(0, data["success_count"])
	suite.EqualValues(0, data["failure_count"])
	suite.EqualValues(0, data["rate_limited_count"])
}

func (suite *UsageStatsTestSuite) TestCounters() {
	suite.u.Used(nil)
	suite.u.Used(nil)
	suite.u.Used(io.EOF)
	suite.u.Used(&tracelib.RateLimitError{})

	data := suite.Marshal()

	suite.EqualValues(2, data["success_count"])
	suite.EqualValues(1, data["failure_count"])
	suite.EqualValues(1, data["rate_limited_count"])
	suite.InDelta(time.Now().Unix(), data["last_used"], 2)
}

func TestUsageStats(t *testing.T) {
	suite.Run(t, &UsageStatsTestSuite{})
}
