//go:build integration

package test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/caesium-cloud/lgflow/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var (
	authorizer = role.Actor{User: "adam", Role: models.RoleAuthorizer}
	inputter   = role.Actor{User: "ines", Role: models.RoleInputter}
)

type IntegrationTestSuite struct {
	suite.Suite
	lgflowURL string
	client    client.Lgflow
}

func (s *IntegrationTestSuite) SetupSuite() {
	host := os.Getenv("LGFLOW_HOST")
	if host == "" {
		host = "localhost"
	}
	s.lgflowURL = fmt.Sprintf("http://%v:8080", host)
	s.client = client.Client(s.lgflowURL)
}

func (s *IntegrationTestSuite) TestHealth() {
	resp, err := http.Get(fmt.Sprintf("%v/health", s.lgflowURL))
	assert.Nil(s.T(), err)
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Nil(s.T(), s.client.Health(context.Background()))
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
