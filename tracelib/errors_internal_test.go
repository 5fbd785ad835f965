package tracelib

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ParseRetryAfterTestSuite struct {
	suite.Suite

	now time.Time
}

func (suite *ParseRetryAfterTestSuite) SetupTest() {
	suite.now = time.Date(2021, 1, 19, 2, 38, 56, 0, time.UTC)
}

func (suite *ParseRetryAfterTestSuite) TestEmpty() {
	suite.Zero(parseRetryAfter("", suite.now))
}

func (suite *ParseRetryAfterTestSuite) TestSeconds() {
	suite.Equal(2*time.Second, parseRetryAfter("2", suite.now))
	suite.Equal(120*time.Second, parseRetryAfter(" 120 ", suite.now))
}

func (suite *ParseRetryAfterTestSuite) TestNegative() {
	suite.Zero(parseRetryAfter("-1", suite.now))
}

func (suite *ParseRetryAfterTestSuite) TestDate() {
	value := suite.now.Add(30 * time.Second).Format(http.TimeFormat)

	suite.Equal(30*time.Second, parseRetryAfter(value, suite.now))
}

func (suite *ParseRetryAfterTestSuite) TestDateInPast() {
	value := suite.now.Add(-30 * time.Second).Format(http.TimeFormat)

	suite.Zero(parseRetryAfter(value, suite.now))
}

func (suite *ParseRetryAfterTestSuite) TestGarbage() {
	suite.Zero(parseRetryAfter("tomorrow", suite.now))
}

func TestParseRetryAfter(t *testing.T) {
	suite.Run(t, &ParseRetryAfterTestSuite{})
}

type HTTPErrorTestSuite struct {
	suite.Suite
}

func (suite *HTTPErrorTestSuite) TestNil() {
	var err *httpError

	suite.Empty(err.Error())
	suite.Empty(err.Message())
	suite.Equal(http.StatusInternalServerError, err.StatusCode())
	suite.Nil(err.Unwrap())
}

func (suite *HTTPErrorTestSuite) TestMessageAndError() {
	err := &httpError{
		message:    "Cannot trace",
		err:        io.EOF,
		statusCode: http.StatusUnprocessableEntity,
	}

	suite.Equal("Cannot trace: EOF", err.Error())
	suite.Equal(http.StatusUnprocessableEntity, err.StatusCode())
	suite.True(errors.Is(err, io.EOF))

	data, jsonErr := json.Marshal(err)

	suite.NoError(jsonErr)
	suite.JSONEq(`{"error": {"message": "Cannot trace", "context": "EOF"}}`, string(data))
}

func (suite *HTTPErrorTestSuite) TestOnlyMessage() {
	err := &httpError{message: "Target is required"}

	suite.Equal("Target is required", err.Error())
	suite.Empty(err.Err())
}

func (suite *HTTPErrorTestSuite) TestRateLimitError() {
	suite.Equal("rate limited", (&RateLimitError{}).Error())
	suite.Equal("rate limited, retry after 2s", (&RateLimitError{RetryAfter: 2 * time.Second}).Error())
}

func TestHTTPError(t *testing.T) {
	suite.Run(t, &HTTPErrorTestSuite{})
}
