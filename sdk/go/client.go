package pccsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pcc/internal/domain"
	"pcc/internal/server"
	"pcc/internal/views"
)

// Client is a minimal project command center HTTP API client.
type Client struct {
	BaseURL    string
	BasePath   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

func (c *Client) Project(ctx context.Context) (domain.Project, error) {
	var resp domain.Project
	err := c.do(ctx, http.MethodGet, "project", nil, &resp)
	return resp, err
}

func (c *Client) Dashboard(ctx context.Context) (views.Dashboard, error) {
	var resp views.Dashboard
	err := c.do(ctx, http.MethodGet, "dashboard", nil, &resp)
	return resp, err
}

// SetHealth sets the overall project health (green, yellow or red).
func (c *Client) SetHealth(ctx context.Context, status domain.HealthStatus) (server.HealthResponse, error) {
	var resp server.HealthResponse
	err := c.do(ctx, http.MethodPut, "project/health", server.SetHealthRequest{Status: string(status)}, &resp)
	return resp, err
}

func (c *Client) Milestones(ctx context.Context) ([]server.MilestoneResponse, error) {
	var resp []server.MilestoneResponse
	err := c.do(ctx, http.MethodGet, "milestones", nil, &resp)
	return resp, err
}

// AddTask creates a not-started task in the milestone.
func (c *Client) AddTask(ctx context.Context, milestoneID string, req server.CreateTaskRequest) (domain.Task, error) {
	var resp domain.Task
	endpoint := fmt.Sprintf("milestones/%s/tasks", url.PathEscape(milestoneID))
	err := c.do(ctx, http.MethodPost, endpoint, req, &resp)
	return resp, err
}

func (c *Client) CycleTask(ctx context.Context, milestoneID, taskID string) (domain.Task, error) {
	var resp domain.Task
	endpoint := fmt.Sprintf("milestones/%s/tasks/%s/cycle", url.PathEscape(milestoneID), url.PathEscape(taskID))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// Risks returns the register: non-closed first, then by score.
func (c *Client) Risks(ctx context.Context) ([]views.ScoredRisk, error) {
	var resp []views.ScoredRisk
	err := c.do(ctx, http.MethodGet, "risks", nil, &resp)
	return resp, err
}

func (c *Client) RiskMatrix(ctx context.Context) ([]views.MatrixCell, error) {
	var resp []views.MatrixCell
	err := c.do(ctx, http.MethodGet, "risks/matrix", nil, &resp)
	return resp, err
}

func (c *Client) AddRisk(ctx context.Context, req server.CreateRiskRequest) (views.ScoredRisk, error) {
	var resp views.ScoredRisk
	err := c.do(ctx, http.MethodPost, "risks", req, &resp)
	return resp, err
}

func (c *Client) CycleRisk(ctx context.Context, riskID string) (views.ScoredRisk, error) {
	var resp views.ScoredRisk
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("risks/%s/cycle", url.PathEscape(riskID)), nil, &resp)
	return resp, err
}

func (c *Client) Stakeholders(ctx context.Context) ([]server.StakeholderResponse, error) {
	var resp []server.StakeholderResponse
	err := c.do(ctx, http.MethodGet, "stakeholders", nil, &resp)
	return resp, err
}

func (c *Client) StakeholderQuadrants(ctx context.Context) ([]server.QuadrantGroup, error) {
	var resp []server.QuadrantGroup
	err := c.do(ctx, http.MethodGet, "stakeholders/quadrants", nil, &resp)
	return resp, err
}

func (c *Client) AddStakeholder(ctx context.Context, req server.CreateStakeholderRequest) (server.StakeholderResponse, error) {
	var resp server.StakeholderResponse
	err := c.do(ctx, http.MethodPost, "stakeholders", req, &resp)
	return resp, err
}

// Decisions returns the log newest first.
func (c *Client) Decisions(ctx context.Context) ([]domain.Decision, error) {
	var resp []domain.Decision
	err := c.do(ctx, http.MethodGet, "decisions", nil, &resp)
	return resp, err
}

func (c *Client) AddDecision(ctx context.Context, req server.CreateDecisionRequest) (domain.Decision, error) {
	var resp domain.Decision
	err := c.do(ctx, http.MethodPost, "decisions", req, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	basePath := strings.Trim(c.BasePath, "/")
	if basePath == "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + basePath
}
