package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pcc/internal/domain"
	"pcc/internal/engine"
	"pcc/internal/store"
	"pcc/internal/views"
)

// Config for the HTTP API handler.
type Config struct {
	Store    *store.Store
	Engine   engine.Engine
	BasePath string
	Limits   views.Limits
	Now      func() time.Time
	Logger   *slog.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"not found: milestone ms-9"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope returned by every operation.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

type handlers struct {
	store  *store.Store
	engine engine.Engine
	limits views.Limits
	now    func() time.Time
}

// New returns an HTTP handler exposing the project API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Store == nil {
		return nil, errors.New("server: store is required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Limits == (views.Limits{}) {
		cfg.Limits = views.DefaultLimits
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(cfg.Logger))
	router.Use(middleware.Recoverer)

	hcfg := huma.DefaultConfig("Project Command Center API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	h := handlers{store: cfg.Store, engine: cfg.Engine, limits: cfg.Limits, now: cfg.Now}
	registerDocs(router, basePath)
	registerHealth(group)
	h.registerProject(group)
	h.registerMilestones(group)
	h.registerRisks(group)
	h.registerStakeholders(group)
	h.registerDecisions(group)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, engine.ErrInvalidInput):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get(path.Join(basePath, "docs"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var (
		once sync.Once
		spec []byte
	)
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			spec, _ = json.Marshal(oas)
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	for _, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{Ref: "#/components/schemas/ApiError"},
					},
				},
			}
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Project Command Center API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

var mutationErrors = []int{
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusInternalServerError,
}

func (h handlers) registerProject(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/project",
		Summary:     "Current project snapshot",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body domain.Project `json:"body"`
	}, error) {
		return &struct {
			Body domain.Project `json:"body"`
		}{Body: h.store.Read()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Dashboard aggregate",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body views.Dashboard `json:"body"`
	}, error) {
		d := views.BuildDashboard(h.store.Read(), h.now(), h.limits)
		return &struct {
			Body views.Dashboard `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-project-health",
		Method:      http.MethodPut,
		Path:        "/project/health",
		Summary:     "Set project health",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body SetHealthRequest `json:"body"`
	}) (*struct {
		Body HealthResponse `json:"body"`
	}, error) {
		status := domain.HealthStatus(input.Body.Status)
		p, err := h.store.Update(ctx, func(p domain.Project) (domain.Project, error) {
			return h.engine.SetProjectHealth(p, status)
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body HealthResponse `json:"body"`
		}{Body: HealthResponse{Status: p.HealthStatus, Label: p.HealthStatus.Label()}}, nil
	})
}

func (h handlers) registerMilestones(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-milestones",
		Method:      http.MethodGet,
		Path:        "/milestones",
		Summary:     "List milestones with progress",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []MilestoneResponse `json:"body"`
	}, error) {
		return &struct {
			Body []MilestoneResponse `json:"body"`
		}{Body: mapMilestones(h.store.Read().Milestones)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/milestones/{milestone_id}/tasks",
		Summary:       "Add a task to a milestone",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		MilestoneID string            `path:"milestone_id"`
		Body        CreateTaskRequest `json:"body"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		p, err := h.store.Update(ctx, func(p domain.Project) (domain.Project, error) {
			return h.engine.AddTask(p, input.MilestoneID, input.Body.input())
		})
		if err != nil {
			return nil, handleError(err)
		}
		m := p.Milestones[p.FindMilestone(input.MilestoneID)]
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: m.Tasks[len(m.Tasks)-1]}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cycle-task-status",
		Method:      http.MethodPost,
		Path:        "/milestones/{milestone_id}/tasks/{task_id}/cycle",
		Summary:     "Advance a task to its next status",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		MilestoneID string `path:"milestone_id"`
		TaskID      string `path:"task_id"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		p, err := h.store.Update(ctx, func(p domain.Project) (domain.Project, error) {
			return h.engine.CycleTaskStatus(p, input.MilestoneID, input.TaskID)
		})
		if err != nil {
			return nil, handleError(err)
		}
		m := p.Milestones[p.FindMilestone(input.MilestoneID)]
		return &struct {
			Body domain.Task `json:"body"`
		}{Body: m.Tasks[m.FindTask(input.TaskID)]}, nil
	})
}

func (h handlers) registerRisks(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-risks",
		Method:      http.MethodGet,
		Path:        "/risks",
		Summary:     "Risk register, closed risks last",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []views.ScoredRisk `json:"body"`
	}, error) {
		return &struct {
			Body []views.ScoredRisk `json:"body"`
		}{Body: mapRisks(views.RiskRegister(h.store.Read().Risks))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "risk-matrix",
		Method:      http.MethodGet,
		Path:        "/risks/matrix",
		Summary:     "Probability by impact grid of non-closed risks",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []views.MatrixCell `json:"body"`
	}, error) {
		return &struct {
			Body []views.MatrixCell `json:"body"`
		}{Body: views.MatrixGrid(h.store.Read().Risks)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-risk",
		Method:        http.MethodPost,
		Path:          "/risks",
		Summary:       "Register a risk",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateRiskRequest `json:"body"`
	}) (*struct {
		Body views.ScoredRisk `json:"body"`
	}, error) {
		p, err := h.store.Update(ctx, func(p domain.Project) (domain.Project, error) {
			return h.engine.AddRisk(p, input.Body.input())
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body views.ScoredRisk `json:"body"`
		}{Body: views.Score(p.Risks[len(p.Risks)-1])}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cycle-risk-status",
		Method:      http.MethodPost,
		Path:        "/risks/{risk_id}/cycle",
		Summary:     "Advance a risk to its next status",
		Errors:      mutationErrors,
	}, func(ctx context.Context, input *struct {
		RiskID string `path:"risk_id"`
	}) (*struct {
		Body views.ScoredRisk `json:"body"`
	}, error) {
		p, err := h.store.Update(ctx, func(p domain.Project) (domain.Project, error) {
			return h.engine.CycleRiskStatus(p, input.RiskID)
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body views.ScoredRisk `json:"body"`
		}{Body: views.Score(p.Risks[p.FindRisk(input.RiskID)])}, nil
	})
}

func (h handlers) registerStakeholders(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-stakeholders",
		Method:      http.MethodGet,
		Path:        "/stakeholders",
		Summary:     "List stakeholders with their quadrant",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []StakeholderResponse `json:"body"`
	}, error) {
		return &struct {
			Body []StakeholderResponse `json:"body"`
		}{Body: mapStakeholders(h.store.Read().Stakeholders)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "stakeholder-quadrants",
		Method:      http.MethodGet,
		Path:        "/stakeholders/quadrants",
		Summary:     "Stakeholders grouped by influence and interest",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []QuadrantGroup `json:"body"`
	}, error) {
		return &struct {
			Body []QuadrantGroup `json:"body"`
		}{Body: quadrantGroups(h.store.Read().Stakeholders)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-stakeholder",
		Method:        http.MethodPost,
		Path:          "/stakeholders",
		Summary:       "Add a stakeholder",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateStakeholderRequest `json:"body"`
	}) (*struct {
		Body StakeholderResponse `json:"body"`
	}, error) {
		p, err := h.store.Update(ctx, func(p domain.Project) (domain.Project, error) {
			return h.engine.AddStakeholder(p, input.Body.input())
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StakeholderResponse `json:"body"`
		}{Body: stakeholderResponse(p.Stakeholders[len(p.Stakeholders)-1])}, nil
	})
}

func (h handlers) registerDecisions(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-decisions",
		Method:      http.MethodGet,
		Path:        "/decisions",
		Summary:     "Decision log, newest first",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Decision `json:"body"`
	}, error) {
		decisions := h.store.Read().Decisions
		if decisions == nil {
			decisions = []domain.Decision{}
		}
		return &struct {
			Body []domain.Decision `json:"body"`
		}{Body: decisions}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-decision",
		Method:        http.MethodPost,
		Path:          "/decisions",
		Summary:       "Record a decision",
		DefaultStatus: http.StatusCreated,
		Errors:        mutationErrors,
	}, func(ctx context.Context, input *struct {
		Body CreateDecisionRequest `json:"body"`
	}) (*struct {
		Body domain.Decision `json:"body"`
	}, error) {
		p, err := h.store.Update(ctx, func(p domain.Project) (domain.Project, error) {
			return h.engine.AddDecision(p, input.Body.input())
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Decision `json:"body"`
		}{Body: p.Decisions[0]}, nil
	})
}
