// Package client is a small HTTP client for a running lgflow API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/caesium-cloud/lgflow/internal/workflow"
	"github.com/pkg/errors"
)

type Lgflow interface {
	Health(ctx context.Context) error
	CreateTask(ctx context.Context, as role.Actor, in workflow.NewTask) (*task.CreateResponse, error)
	Transition(ctx context.Context, as role.Actor, id string, req workflow.Request) (*models.TaskRecord, error)
	History(ctx context.Context, as role.Actor, lgNumber string) (*task.HistoryResponse, error)
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lgflow: %d %s", e.Code, e.Message)
}

func Client(baseURL string) Lgflow {
	return &client{base: baseURL, http: http.DefaultClient}
}

type client struct {
	base string
	http *http.Client
}

func (c *client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", role.Actor{}, nil, nil)
}

func (c *client) CreateTask(ctx context.Context, as role.Actor, in workflow.NewTask) (*task.CreateResponse, error) {
	out := &task.CreateResponse{}
	if err := c.do(ctx, http.MethodPost, "/v1/tasks", as, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) Transition(ctx context.Context, as role.Actor, id string, req workflow.Request) (*models.TaskRecord, error) {
	out := &models.TaskRecord{}
	path := fmt.Sprintf("/v1/tasks/%s/transitions", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, as, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) History(ctx context.Context, as role.Actor, lgNumber string) (*task.HistoryResponse, error) {
	out := &task.HistoryResponse{}
	if err := c.do(ctx, http.MethodGet, "/v1/history/"+url.PathEscape(lgNumber), as, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) do(ctx context.Context, method, path string, as role.Actor, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if as.User != "" {
		req.Header.Set(request.HeaderUser, as.User)
		req.Header.Set(request.HeaderRole, string(as.Role))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(buf, &msg)
		return &StatusError{Code: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(buf, out)
}
