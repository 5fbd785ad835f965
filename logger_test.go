package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type LoggerTestSuite struct {
	suite.Suite

	buf *bytes.Buffer
	l   *logger
}

func (suite *LoggerTestSuite) SetupTest() {
	suite.buf = &bytes.Buffer{}
	suite.l = newLogger(suite.buf, zerolog.DebugLevel)
}

func (suite *LoggerTestSuite) Lines() []map[string]interface{} {
	rv := []map[string]interface{}{}

	for _, line := range strings.Split(strings.TrimSpace(suite.buf.String()), "\n") {
		data := map[string]interface{}{}

		suite.NoError(json.Unmarshal([]byte(line), &data))

		rv = append(rv, data)
	}

	return rv
}

func (suite *LoggerTestSuite) TestLookupError() {
	suite.l.LookupError(net.ParseIP("1.1.1.1"), "ipapi", io.EOF)

	lines := suite.Lines()

	suite.Len(lines, 1)
	suite.Equal("lookup", lines[0]["event_name"])
	suite.Equal("error", lines[0]["level"])
	suite.Equal("ipapi", lines[0]["provider"])
	suite.Equal("1.1.1.1", lines[0]["ip"])
	suite.Equal("EOF", lines[0]["error"])
}

func (suite *LoggerTestSuite) TestRateLimited() {
	suite.l.RateLimited(net.ParseIP("1.1.1.1"), "ipapico", 2*time.Second)

	lines := suite.Lines()

	suite.Equal("warn", lines[0]["level"])
	suite.Equal("ipapico", lines[0]["provider"])
	suite.Contains(lines[0], "delay")
}

func (suite *LoggerTestSuite) TestCacheAndTrace() {
	suite.l.CacheError("1.1.1.1", io.EOF)
	suite.l.TraceResolved("id", 10, 7)

	lines := suite.Lines()

	suite.Len(lines, 2)
	suite.Equal("cache", lines[0]["event_name"])
	suite.Equal("1.1.1.1", lines[0]["address"])
	suite.Equal("trace", lines[1]["event_name"])
	suite.EqualValues(10, lines[1]["hops"])
	suite.EqualValues(7, lines[1]["located"])
}

func (suite *LoggerTestSuite) TestLevel() {
	l := newLogger(suite.buf, zerolog.InfoLevel)

	l.TraceResolved("id", 1, 1)

	suite.Empty(suite.buf.String())
}

func TestLogger(t *testing.T) {
	suite.Run(t, &LoggerTestSuite{})
}
