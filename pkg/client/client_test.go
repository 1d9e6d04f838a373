package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/caesium-cloud/lgflow/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionSendsIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks/05-Mar-2025-001/transitions", r.URL.Path)
		assert.Equal(t, "ines", r.Header.Get(request.HeaderUser))
		assert.Equal(t, "Inputter", r.Header.Get(request.HeaderRole))

		var req workflow.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, workflow.Decision("send"), req.Decision)

		_ = json.NewEncoder(w).Encode(models.TaskRecord{TaskID: "05-Mar-2025-001", Status: models.StatusReadyForAuth})
	}))
	defer srv.Close()

	rec, err := Client(srv.URL).Transition(context.Background(),
		role.Actor{User: "ines", Role: models.RoleInputter},
		"05-Mar-2025-001",
		workflow.Request{Decision: "send", Authorizer: "adam"},
	)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForAuth, rec.Status)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"task changed since it was read"}`))
	}))
	defer srv.Close()

	_, err := Client(srv.URL).History(context.Background(), role.Actor{}, "LG-1")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.Code)
	assert.Equal(t, "task changed since it was read", se.Message)
}
