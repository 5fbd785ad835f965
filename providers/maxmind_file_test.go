package providers_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/9seconds/tracemap/providers"
	"github.com/stretchr/testify/suite"
)

type MaxmindFileTestSuite struct {
	suite.Suite

	dir string
}

func (suite *MaxmindFileTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *MaxmindFileTestSuite) TestNoPath() {
	_, err := providers.NewMaxmindFile(map[string]string{})

	suite.ErrorIs(err, providers.ErrDatabasePathIsRequired)
}

func (suite *MaxmindFileTestSuite) TestAbsentFile() {
	_, err := providers.NewMaxmindFile(map[string]string{
		"path": filepath.Join(suite.dir, "GeoLite2-City.mmdb"),
	})

	suite.Error(err)
}

func (suite *MaxmindFileTestSuite) TestGarbage() {
	path := filepath.Join(suite.dir, "GeoLite2-City.mmdb")

	suite.NoError(os.WriteFile(path, []byte("definitely not a maxmind database"), 0o644))

	_, err := providers.NewMaxmindFile(map[string]string{"path": path})

	suite.Error(err)
}

func TestMaxmindFile(t *testing.T) {
	suite.Run(t, &MaxmindFileTestSuite{})
}
