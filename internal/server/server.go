// Package server exposes the lair over HTTP. Handlers are thin: they
// translate JSON in and out of the rule components and map rule
// violations onto the error envelope.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"villainlair/internal/app"
	"villainlair/internal/domain"
	"villainlair/internal/events"
	"villainlair/internal/repo"
	"villainlair/internal/rules"
)

// Config for the HTTP API handler.
type Config struct {
	Lair     *app.Lair
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"rule_violation"`
	Message string         `json:"message" example:"At least 2 minions must be assigned"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

type requestKey struct{}
type bodyBytesKey struct{}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// srv serializes access to the shared store. The rule components are not
// safe for concurrent writers.
type srv struct {
	mu   sync.Mutex
	lair *app.Lair
}

// New returns an HTTP handler exposing the lair API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Lair == nil {
		return nil, errors.New("server: lair is required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema/request validation errors should be 400 bad_request
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			ctx := context.WithValue(r.Context(), requestKey{}, r)
			ctx = context.WithValue(ctx, bodyBytesKey{}, body)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Villain Lair API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	s := &srv{lair: cfg.Lair}
	registerDocs(router, basePath)
	registerHealth(group)
	registerDevAuth(group, cfg.Auth)
	registerMinions(group, s)
	registerSchemes(group, s)
	registerEquipment(group, s)
	registerBases(group, s)
	registerEvents(group, s)
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
	var v *rules.Violation
	if errors.As(err, &v) {
		return newAPIError(http.StatusUnprocessableEntity, "rule_violation", v.Message, nil)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	if strings.Contains(lowered, "invalid") || strings.Contains(lowered, "missing") || strings.Contains(lowered, "required") {
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
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
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func bodyBytes(ctx context.Context) []byte {
	if b, ok := ctx.Value(bodyBytesKey{}).([]byte); ok {
		return b
	}
	return nil
}

type IDPath struct {
	ID int64 `path:"id"`
}

// checkResponse carries the outcome of a soft validation: the request is
// answered 200 even when the rules object, with the objections listed.
type checkResponse struct {
	OK       bool     `json:"ok"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			applyAuthSecurity(oas, basePath)
			spec, _ = json.Marshal(oas)
		}
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

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{
		{"bearerAuth": {}},
	}
	oas.Security = security
	healthPath := path.Join(basePath, "health")
	devLoginPath := path.Join(basePath, "auth/dev/login")
	if !strings.HasPrefix(healthPath, "/") {
		healthPath = "/" + healthPath
	}
	if !strings.HasPrefix(devLoginPath, "/") {
		devLoginPath = "/" + devLoginPath
	}
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if route == healthPath || route == devLoginPath {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
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
    <title>Villain Lair API Docs</title>
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
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Authenticate with Authorization: Bearer &lt;token&gt;.
    </p>
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

func registerDevAuth(api huma.API, cfg AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID: "dev-login",
		Method:      http.MethodPost,
		Path:        "/auth/dev/login",
		Summary:     "Mint a development token",
	}, func(ctx context.Context, input *struct {
		Body struct {
			ActorID string `json:"actor_id" minLength:"1"`
		} `json:"body"`
	}) (*struct {
		Body struct {
			Token     string `json:"token"`
			TokenType string `json:"token_type"`
		} `json:"body"`
	}, error) {
		if !cfg.AllowDevLogin {
			return nil, newAPIError(http.StatusForbidden, "forbidden", "dev login disabled", nil)
		}
		token, err := signDevToken(cfg.JWTSecret, input.Body.ActorID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Token     string `json:"token"`
				TokenType string `json:"token_type"`
			} `json:"body"`
		}{}
		out.Body.Token = token
		out.Body.TokenType = "Bearer"
		return out, nil
	})
}

func registerMinions(api huma.API, s *srv) {
	huma.Register(api, huma.Operation{
		OperationID: "list-minions",
		Method:      http.MethodGet,
		Path:        "/minions",
		Summary:     "List minions",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Minion `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		minions, err := s.lair.Repo.GetAllMinions(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Minion `json:"body"`
		}{Body: minions}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-minion",
		Method:      http.MethodGet,
		Path:        "/minions/{id}",
		Summary:     "Get minion",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body domain.Minion `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		m, err := s.lair.Repo.GetMinionByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Minion `json:"body"`
		}{Body: m}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-minion",
		Method:        http.MethodPost,
		Path:          "/minions",
		Summary:       "Recruit a minion",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body CreateMinionRequest `json:"body"`
	}) (*struct {
		Body struct {
			Minion   domain.Minion `json:"minion"`
			Warnings []string      `json:"warnings,omitempty"`
		} `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		m, warnings, err := s.lair.Minions.CreateMinion(ctx, input.Body.toDomain())
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Minion   domain.Minion `json:"minion"`
				Warnings []string      `json:"warnings,omitempty"`
			} `json:"body"`
		}{}
		out.Body.Minion = m
		out.Body.Warnings = warnings
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-minion",
		Method:      http.MethodDelete,
		Path:        "/minions/{id}",
		Summary:     "Delete minion",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Minions.DeleteMinion(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "pay-minion",
		Method:      http.MethodPost,
		Path:        "/minions/{id}/pay",
		Summary:     "Pay a minion and update loyalty",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		IDPath
		Body struct {
			AmountPaid float64 `json:"amount_paid" minimum:"0"`
		} `json:"body"`
	}) (*struct {
		Body domain.Minion `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		m, err := s.lair.Minions.UpdateLoyalty(ctx, input.ID, input.Body.AmountPaid)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Minion `json:"body"`
		}{Body: m}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-minion-mood",
		Method:      http.MethodPost,
		Path:        "/minions/{id}/mood/refresh",
		Summary:     "Recompute minion mood",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body domain.Minion `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		m, err := s.lair.Minions.UpdateMood(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Minion `json:"body"`
		}{Body: m}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-minion-scheme",
		Method:      http.MethodPost,
		Path:        "/minions/{id}/assignments/scheme",
		Summary:     "Assign minion to a scheme",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		IDPath
		Body struct {
			SchemeID int64 `json:"scheme_id"`
		} `json:"body"`
	}) (*struct {
		Body domain.Minion `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Minions.AssignMinionToScheme(ctx, input.ID, input.Body.SchemeID); err != nil {
			return nil, handleError(err)
		}
		m, err := s.lair.Repo.GetMinionByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Minion `json:"body"`
		}{Body: m}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unassign-minion-scheme",
		Method:      http.MethodDelete,
		Path:        "/minions/{id}/assignments/scheme",
		Summary:     "Unassign minion from its scheme",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body domain.Minion `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Minions.UnassignMinionFromScheme(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		m, err := s.lair.Repo.GetMinionByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Minion `json:"body"`
		}{Body: m}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-minion-base",
		Method:      http.MethodPost,
		Path:        "/minions/{id}/assignments/base",
		Summary:     "Station minion at a base",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		IDPath
		Body struct {
			BaseID int64 `json:"base_id"`
		} `json:"body"`
	}) (*struct {
		Body domain.Minion `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Minions.AssignMinionToBase(ctx, input.ID, input.Body.BaseID); err != nil {
			return nil, handleError(err)
		}
		m, err := s.lair.Repo.GetMinionByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Minion `json:"body"`
		}{Body: m}, nil
	})
}

func registerSchemes(api huma.API, s *srv) {
	huma.Register(api, huma.Operation{
		OperationID: "list-schemes",
		Method:      http.MethodGet,
		Path:        "/schemes",
		Summary:     "List schemes",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.EvilScheme `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		schemes, err := s.lair.Repo.GetAllSchemes(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.EvilScheme `json:"body"`
		}{Body: schemes}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-scheme",
		Method:      http.MethodGet,
		Path:        "/schemes/{id}",
		Summary:     "Get scheme",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body domain.EvilScheme `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		scheme, err := s.lair.Repo.GetSchemeByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.EvilScheme `json:"body"`
		}{Body: scheme}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-scheme",
		Method:        http.MethodPost,
		Path:          "/schemes",
		Summary:       "Plot a scheme",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body CreateSchemeRequest `json:"body"`
	}) (*struct {
		Body struct {
			Scheme   domain.EvilScheme `json:"scheme"`
			Warnings []string          `json:"warnings,omitempty"`
		} `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		scheme, warnings, err := s.lair.Schemes.CreateScheme(ctx, input.Body.toDomain())
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Scheme   domain.EvilScheme `json:"scheme"`
				Warnings []string          `json:"warnings,omitempty"`
			} `json:"body"`
		}{}
		out.Body.Scheme = scheme
		out.Body.Warnings = warnings
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "scheme-success",
		Method:      http.MethodGet,
		Path:        "/schemes/{id}/success",
		Summary:     "Current success likelihood",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			SuccessLikelihood int `json:"success_likelihood"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		score, err := s.lair.Schemes.CalculateSuccessLikelihood(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				SuccessLikelihood int `json:"success_likelihood"`
			} `json:"body"`
		}{}
		out.Body.SuccessLikelihood = score
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-scheme-success",
		Method:      http.MethodPost,
		Path:        "/schemes/{id}/success/refresh",
		Summary:     "Recompute and persist success likelihood",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			SuccessLikelihood int `json:"success_likelihood"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		score, err := s.lair.Schemes.UpdateSuccessLikelihood(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				SuccessLikelihood int `json:"success_likelihood"`
			} `json:"body"`
		}{}
		out.Body.SuccessLikelihood = score
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "scheme-budget",
		Method:      http.MethodGet,
		Path:        "/schemes/{id}/budget",
		Summary:     "Budget health",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			Status              string  `json:"status"`
			AllowNewAssignments bool    `json:"allow_new_assignments"`
			Remaining           float64 `json:"remaining"`
			OverBudget          bool    `json:"over_budget"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		status, allow, err := s.lair.Schemes.ValidateBudgetStatus(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		remaining, err := s.lair.Schemes.RemainingBudget(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Status              string  `json:"status"`
				AllowNewAssignments bool    `json:"allow_new_assignments"`
				Remaining           float64 `json:"remaining"`
				OverBudget          bool    `json:"over_budget"`
			} `json:"body"`
		}{}
		out.Body.Status = status
		out.Body.AllowNewAssignments = allow
		out.Body.Remaining = remaining
		out.Body.OverBudget = remaining < 0
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "scheme-deadline",
		Method:      http.MethodGet,
		Path:        "/schemes/{id}/deadline",
		Summary:     "Deadline urgency",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			Status string `json:"status"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		status, err := s.lair.Schemes.GetDeadlineStatus(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Status string `json:"status"`
			} `json:"body"`
		}{}
		out.Body.Status = status
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "scheme-requirements",
		Method:      http.MethodGet,
		Path:        "/schemes/{id}/requirements",
		Summary:     "Resource requirements vs assigned",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			checkResponse
			MinionCount    int  `json:"minion_count"`
			EquipmentCount int  `json:"equipment_count"`
			HasDoomsday    bool `json:"has_doomsday"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		minionCount, err := s.lair.Repo.GetSchemeAssignedMinionsCount(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		equipmentCount, err := s.lair.Repo.GetSchemeAssignedEquipmentCount(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		hasDoomsday := false
		for _, e := range s.lair.Store.SchemeEquipment(input.ID) {
			if e.Category == domain.CategoryDoomsday {
				hasDoomsday = true
			}
		}
		met, warnings, err := s.lair.Schemes.ValidateResourceRequirements(ctx, input.ID, minionCount, equipmentCount, hasDoomsday)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				checkResponse
				MinionCount    int  `json:"minion_count"`
				EquipmentCount int  `json:"equipment_count"`
				HasDoomsday    bool `json:"has_doomsday"`
			} `json:"body"`
		}{}
		out.Body.OK = met
		out.Body.Warnings = warnings
		out.Body.MinionCount = minionCount
		out.Body.EquipmentCount = equipmentCount
		out.Body.HasDoomsday = hasDoomsday
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "scheme-specialists",
		Method:      http.MethodGet,
		Path:        "/schemes/{id}/specialists",
		Summary:     "Specialty coverage",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			checkResponse
			MatchingMinions int `json:"matching_minions"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		ok, matching, warnings, err := s.lair.Schemes.ValidateSpecialtyMatching(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				checkResponse
				MatchingMinions int `json:"matching_minions"`
			} `json:"body"`
		}{}
		out.Body.OK = ok
		out.Body.Warnings = warnings
		out.Body.MatchingMinions = matching
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "scheme-estimate",
		Method:      http.MethodGet,
		Path:        "/schemes/{id}/estimate",
		Summary:     "Project the cost of assigning a minion",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		IDPath
		MinionID int64 `query:"minion_id" required:"true"`
	}) (*struct {
		Body struct {
			AddedCost   float64 `json:"added_cost"`
			NewTotal    float64 `json:"new_total"`
			WouldExceed bool    `json:"would_exceed"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		candidate, err := s.lair.Repo.GetMinionByID(ctx, input.MinionID)
		if err != nil {
			return nil, handleError(err)
		}
		added, total, exceed, err := s.lair.Schemes.CalculateEstimatedSpending(ctx, input.ID, candidate)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				AddedCost   float64 `json:"added_cost"`
				NewTotal    float64 `json:"new_total"`
				WouldExceed bool    `json:"would_exceed"`
			} `json:"body"`
		}{}
		out.Body.AddedCost = added
		out.Body.NewTotal = total
		out.Body.WouldExceed = exceed
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-scheme-transition",
		Method:      http.MethodGet,
		Path:        "/schemes/{id}/transition",
		Summary:     "Check a status transition without applying it",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		IDPath
		Target string `query:"target" required:"true"`
	}) (*struct {
		Body checkResponse `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		ok, errs, err := s.lair.Schemes.CanTransitionToStatus(ctx, input.ID, input.Target)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body checkResponse `json:"body"`
		}{Body: checkResponse{OK: ok, Errors: errs}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-scheme",
		Method:      http.MethodPost,
		Path:        "/schemes/{id}/transition",
		Summary:     "Apply a status transition",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		IDPath
		Body struct {
			Status string `json:"status" enum:"Planning,Active,On Hold,Completed,Failed"`
		} `json:"body"`
	}) (*struct {
		Body domain.EvilScheme `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Schemes.TransitionToStatus(ctx, input.ID, input.Body.Status); err != nil {
			return nil, handleError(err)
		}
		scheme, err := s.lair.Repo.GetSchemeByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.EvilScheme `json:"body"`
		}{Body: scheme}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sweep-schemes",
		Method:      http.MethodPost,
		Path:        "/schemes/sweep",
		Summary:     "Auto-complete or auto-fail overdue active schemes",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body struct {
			Swept int `json:"swept"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		schemes, err := s.lair.Repo.GetAllSchemes(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		swept := 0
		for _, scheme := range schemes {
			before := scheme.Status
			if err := s.lair.Schemes.ApplyAutoTransitions(ctx, scheme.ID); err != nil {
				return nil, handleError(err)
			}
			after, err := s.lair.Repo.GetSchemeByID(ctx, scheme.ID)
			if err != nil {
				return nil, handleError(err)
			}
			if after.Status != before {
				swept++
			}
		}
		out := &struct {
			Body struct {
				Swept int `json:"swept"`
			} `json:"body"`
		}{}
		out.Body.Swept = swept
		return out, nil
	})
}

func registerEquipment(api huma.API, s *srv) {
	huma.Register(api, huma.Operation{
		OperationID: "list-equipment",
		Method:      http.MethodGet,
		Path:        "/equipment",
		Summary:     "List equipment",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Equipment `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		items, err := s.lair.Repo.GetAllEquipment(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Equipment `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-equipment",
		Method:      http.MethodGet,
		Path:        "/equipment/{id}",
		Summary:     "Get equipment",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body domain.Equipment `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, err := s.lair.Repo.GetEquipmentByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Equipment `json:"body"`
		}{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-equipment",
		Method:        http.MethodPost,
		Path:          "/equipment",
		Summary:       "Acquire equipment",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body CreateEquipmentRequest `json:"body"`
	}) (*struct {
		Body struct {
			Equipment domain.Equipment `json:"equipment"`
			Warnings  []string         `json:"warnings,omitempty"`
		} `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		e, warnings, err := s.lair.Equipment.AddEquipment(ctx, input.Body.toDomain())
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Equipment domain.Equipment `json:"equipment"`
				Warnings  []string         `json:"warnings,omitempty"`
			} `json:"body"`
		}{}
		out.Body.Equipment = e
		out.Body.Warnings = warnings
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-equipment",
		Method:      http.MethodDelete,
		Path:        "/equipment/{id}",
		Summary:     "Scrap equipment",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct{}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Equipment.DeleteEquipment(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "maintain-equipment",
		Method:      http.MethodPost,
		Path:        "/equipment/{id}/maintain",
		Summary:     "Perform maintenance",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		IDPath
		Body struct {
			AvailableFunds float64 `json:"available_funds" minimum:"0"`
		} `json:"body"`
	}) (*struct {
		Body struct {
			Cost      float64          `json:"cost"`
			Equipment domain.Equipment `json:"equipment"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		cost, err := s.lair.Equipment.PerformMaintenance(ctx, input.ID, input.Body.AvailableFunds)
		if err != nil {
			return nil, handleError(err)
		}
		e, err := s.lair.Repo.GetEquipmentByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Cost      float64          `json:"cost"`
				Equipment domain.Equipment `json:"equipment"`
			} `json:"body"`
		}{}
		out.Body.Cost = cost
		out.Body.Equipment = e
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "degrade-equipment",
		Method:      http.MethodPost,
		Path:        "/equipment/{id}/degrade",
		Summary:     "Apply time-based wear",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body domain.Equipment `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		e, err := s.lair.Equipment.DegradeCondition(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Equipment `json:"body"`
		}{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-equipment-assignment",
		Method:      http.MethodGet,
		Path:        "/equipment/{id}/assignment-check",
		Summary:     "Check an equipment-to-scheme assignment",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		IDPath
		SchemeID int64 `query:"scheme_id" required:"true"`
	}) (*struct {
		Body struct {
			checkResponse
			Message string `json:"message"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		ok, message, warnings, err := s.lair.Equipment.ValidateAssignment(ctx, input.ID, input.SchemeID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				checkResponse
				Message string `json:"message"`
			} `json:"body"`
		}{}
		out.Body.OK = ok
		out.Body.Warnings = warnings
		out.Body.Message = message
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-equipment-scheme",
		Method:      http.MethodPost,
		Path:        "/equipment/{id}/assignments/scheme",
		Summary:     "Assign equipment to a scheme",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		IDPath
		Body struct {
			SchemeID int64 `json:"scheme_id"`
		} `json:"body"`
	}) (*struct {
		Body struct {
			Equipment domain.Equipment `json:"equipment"`
			Warnings  []string         `json:"warnings,omitempty"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		warnings, err := s.lair.Equipment.AssignEquipmentToScheme(ctx, input.ID, input.Body.SchemeID)
		if err != nil {
			return nil, handleError(err)
		}
		e, err := s.lair.Repo.GetEquipmentByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Equipment domain.Equipment `json:"equipment"`
				Warnings  []string         `json:"warnings,omitempty"`
			} `json:"body"`
		}{}
		out.Body.Equipment = e
		out.Body.Warnings = warnings
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unassign-equipment-scheme",
		Method:      http.MethodDelete,
		Path:        "/equipment/{id}/assignments/scheme",
		Summary:     "Pull equipment off its scheme",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body domain.Equipment `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Equipment.UnassignEquipment(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		e, err := s.lair.Repo.GetEquipmentByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Equipment `json:"body"`
		}{Body: e}, nil
	})
}

func registerBases(api huma.API, s *srv) {
	huma.Register(api, huma.Operation{
		OperationID: "list-bases",
		Method:      http.MethodGet,
		Path:        "/bases",
		Summary:     "List bases",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.SecretBase `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		bases, err := s.lair.Repo.GetAllBases(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.SecretBase `json:"body"`
		}{Body: bases}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-base",
		Method:      http.MethodGet,
		Path:        "/bases/{id}",
		Summary:     "Get base",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body domain.SecretBase `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		b, err := s.lair.Repo.GetBaseByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.SecretBase `json:"body"`
		}{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-base",
		Method:        http.MethodPost,
		Path:          "/bases",
		Summary:       "Establish a base",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body CreateBaseRequest `json:"body"`
	}) (*struct {
		Body domain.SecretBase `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		b := input.Body.toDomain()
		if b.Name == "" {
			return nil, newAPIError(http.StatusUnprocessableEntity, "rule_violation", "Base name is required", nil)
		}
		if b.Capacity <= 0 {
			return nil, newAPIError(http.StatusUnprocessableEntity, "rule_violation", "Base capacity must be positive", nil)
		}
		if b.SecurityLevel < 1 || b.SecurityLevel > 10 {
			return nil, newAPIError(http.StatusUnprocessableEntity, "rule_violation", "Security level must be between 1 and 10", nil)
		}
		actor, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		id, err := s.lair.Repo.InsertBase(ctx, b)
		if err != nil {
			return nil, handleError(err)
		}
		b.ID = id
		s.lair.Store.PutBase(b)
		if err := s.lair.Events.Append(ctx, "base.created", "base", id, actor, events.EventPayload{"name": b.Name}); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.SecretBase `json:"body"`
		}{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "base-security",
		Method:      http.MethodGet,
		Path:        "/bases/{id}/security",
		Summary:     "Discovery and security status",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			Status string `json:"status"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		status, err := s.lair.Bases.SecurityStatus(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Status string `json:"status"`
			} `json:"body"`
		}{}
		out.Body.Status = status
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-base-discovered",
		Method:      http.MethodPost,
		Path:        "/bases/{id}/discovered",
		Summary:     "Record that the base was discovered",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		IDPath
		Body struct {
			DiscoveryDate string `json:"discovery_date,omitempty" format:"date-time"`
		} `json:"body"`
	}) (*struct {
		Body domain.SecretBase `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		when := time.Now().UTC()
		if input.Body.DiscoveryDate != "" {
			parsed, err := time.Parse(time.RFC3339, input.Body.DiscoveryDate)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid discovery_date", nil)
			}
			when = parsed
		}
		if err := s.lair.Bases.MarkDiscovered(ctx, input.ID, when); err != nil {
			return nil, handleError(err)
		}
		b, err := s.lair.Repo.GetBaseByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.SecretBase `json:"body"`
		}{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mark-base-secured",
		Method:      http.MethodPost,
		Path:        "/bases/{id}/secured",
		Summary:     "Clear the discovery flag",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body domain.SecretBase `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Bases.MarkSafe(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		b, err := s.lair.Repo.GetBaseByID(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.SecretBase `json:"body"`
		}{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-minions-base",
		Method:      http.MethodPost,
		Path:        "/bases/{id}/minions",
		Summary:     "Station a group of minions, all or nothing",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		IDPath
		Body struct {
			MinionIDs []int64 `json:"minion_ids" minItems:"1"`
		} `json:"body"`
	}) (*struct {
		Body struct {
			Occupancy int `json:"occupancy"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Minions.AssignMinionsToBase(ctx, input.Body.MinionIDs, input.ID); err != nil {
			return nil, handleError(err)
		}
		occupancy, err := s.lair.Bases.CurrentOccupancy(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Occupancy int `json:"occupancy"`
			} `json:"body"`
		}{}
		out.Body.Occupancy = occupancy
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "base-storage",
		Method:      http.MethodGet,
		Path:        "/bases/{id}/storage",
		Summary:     "Stored equipment and remaining space",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			Equipment      []domain.Equipment `json:"equipment"`
			AvailableSpace int                `json:"available_space"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		items, err := s.lair.Bases.StoredEquipment(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		space, err := s.lair.Bases.AvailableStorageSpace(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Equipment      []domain.Equipment `json:"equipment"`
				AvailableSpace int                `json:"available_space"`
			} `json:"body"`
		}{}
		out.Body.Equipment = items
		out.Body.AvailableSpace = space
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "store-equipment",
		Method:      http.MethodPost,
		Path:        "/bases/{id}/equipment",
		Summary:     "Store equipment at the base",
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		IDPath
		Body struct {
			EquipmentID int64 `json:"equipment_id"`
		} `json:"body"`
	}) (*struct {
		Body domain.Equipment `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.lair.Bases.StoreEquipment(ctx, input.ID, input.Body.EquipmentID); err != nil {
			return nil, handleError(err)
		}
		e, err := s.lair.Repo.GetEquipmentByID(ctx, input.Body.EquipmentID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Equipment `json:"body"`
		}{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "base-costs",
		Method:      http.MethodGet,
		Path:        "/bases/{id}/costs",
		Summary:     "Monthly running costs and trend",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			Monthly float64 `json:"monthly"`
			Trend   string  `json:"trend"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		monthly, err := s.lair.Bases.MonthlyCosts(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		trend, err := s.lair.Bases.CostTrend(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Monthly float64 `json:"monthly"`
				Trend   string  `json:"trend"`
			} `json:"body"`
		}{}
		out.Body.Monthly = monthly
		out.Body.Trend = trend
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "base-summary",
		Method:      http.MethodGet,
		Path:        "/bases/{id}/summary",
		Summary:     "Multi-line base report",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *IDPath) (*struct {
		Body struct {
			Summary string `json:"summary"`
		} `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		summary, err := s.lair.Bases.Summary(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := &struct {
			Body struct {
				Summary string `json:"summary"`
			} `json:"body"`
		}{}
		out.Body.Summary = summary
		return out, nil
	})
}

func registerEvents(api huma.API, s *srv) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Latest audit events",
	}, func(ctx context.Context, input *struct {
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind"`
		EntityID   int64  `query:"entity_id"`
		Limit      int    `query:"limit"`
	}) (*struct {
		Body []domain.Event `json:"body"`
	}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		limit := input.Limit
		if limit <= 0 || limit > 500 {
			limit = 100
		}
		evts, err := s.lair.Repo.LatestEvents(ctx, limit, input.Type, input.EntityKind, input.EntityID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Event `json:"body"`
		}{Body: evts}, nil
	})
}
