package env

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type EnvTestSuite struct {
	suite.Suite
}

func (s *EnvTestSuite) TearDownTest() {
	os.Unsetenv("LGFLOW_PORT")
	os.Unsetenv("LGFLOW_LOG_LEVEL")
	os.Unsetenv("LGFLOW_TIMEZONE")
	os.Unsetenv("LGFLOW_ID_SCHEME")
	os.Unsetenv("LGFLOW_CSV_PATH")
	variables = new(Environment)
}

func (s *EnvTestSuite) TestProcess() {
	assert.Nil(s.T(), Process())
	assert.Equal(s.T(), "info", Variables().LogLevel)
	assert.Equal(s.T(), 8080, Variables().Port)
	assert.Equal(s.T(), "optimistic", Variables().Concurrency)
	assert.Equal(s.T(), "sequential", Variables().IDScheme)
	assert.True(s.T(), Variables().DegradeOnLoadError)
	assert.Equal(s.T(), "Africa/Cairo", Variables().Location().String())
}

func (s *EnvTestSuite) TestProcessExplicitNames() {
	os.Setenv("LGFLOW_ID_SCHEME", "uuid")
	os.Setenv("LGFLOW_CSV_PATH", "/tmp/tasks.csv")
	assert.Nil(s.T(), Process())
	assert.Equal(s.T(), "uuid", Variables().IDScheme)
	assert.Equal(s.T(), "/tmp/tasks.csv", Variables().CSVPath)
}

func (s *EnvTestSuite) TestProcessInvalidTypeFailure() {
	os.Setenv("LGFLOW_PORT", "not_a_port")
	assert.NotNil(s.T(), Process())
}

func (s *EnvTestSuite) TestProcessInvalidLogLevelFailure() {
	os.Setenv("LGFLOW_LOG_LEVEL", "bogus")
	assert.NotNil(s.T(), Process())
}

func (s *EnvTestSuite) TestProcessInvalidTimezoneFailure() {
	os.Setenv("LGFLOW_TIMEZONE", "Mars/Olympus")
	assert.NotNil(s.T(), Process())
}

func (s *EnvTestSuite) TestLocationFallback() {
	e := Environment{Timezone: "Mars/Olympus"}
	assert.Equal(s.T(), time.UTC, e.Location())
}

func TestEnvTestSuite(t *testing.T) {
	suite.Run(t, new(EnvTestSuite))
}
