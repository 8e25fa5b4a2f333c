package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/staffhub/internal/domain/user"
	"github.com/geocoder89/staffhub/internal/http/handlers"
	"github.com/geocoder89/staffhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func postBind[T any](t *testing.T, body string) (*httptest.ResponseRecorder, bindErrorResponse) {
	t.Helper()

	r := gin.New()
	r.POST("/bind", func(ctx *gin.Context) {
		var req T
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp bindErrorResponse
	if w.Code == http.StatusBadRequest {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w, resp := postBind[handlers.SignInRequest](t, `{"email":"not-an-email"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}

	wantRules := map[string]string{
		"email":    "email",
		"password": "required",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Error.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_AssignableRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"admin", `{"role":"admin"}`, http.StatusNoContent},
		{"hr upper case", `{"role":"HR"}`, http.StatusNoContent},
		{"employee", `{"role":"employee"}`, http.StatusNoContent},
		{"unknown", `{"role":"manager"}`, http.StatusBadRequest},
		{"empty", `{"role":""}`, http.StatusBadRequest},
		{"missing", `{}`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := postBind[user.AssignRoleRequest](t, tc.body)
			if w.Code != tc.code {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.code, w.Body.String())
			}
			if tc.name == "unknown" {
				if len(resp.Error.Details.Fields) != 1 || resp.Error.Details.Fields[0].Rule != "assignable_role" {
					t.Fatalf("expected assignable_role rule, got %+v", resp.Error.Details.Fields)
				}
			}
		})
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w, resp := postBind[handlers.SignInRequest](t, `{"email":"ada@corp.test","password":12345}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "password" {
		t.Fatalf("expected detail field to be password, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 {
		t.Fatalf("expected at least one field error in details.fields")
	}

	fieldErr := resp.Error.Details.Fields[0]
	if fieldErr.Rule != "type" || fieldErr.Message == "" {
		t.Fatalf("unexpected fields[0]: %+v", fieldErr)
	}
}

func TestBindJSON_SyntaxError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w, resp := postBind[handlers.SignInRequest](t, `{"email":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
	if resp.Error.Details.JSON == "" && resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected error body %s", w.Body.String())
	}
}

func TestBindJSON_EmptyBodyDoesNotLeakDecoderError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w, resp := postBind[handlers.SignInRequest](t, ``)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
	if resp.Error.Details.JSON != "empty_body" {
		t.Fatalf("expected empty_body, got %q", resp.Error.Details.JSON)
	}
	if strings.Contains(w.Body.String(), "EOF") {
		t.Fatalf("decoder error leaked: %s", w.Body.String())
	}
}

func TestBindJSON_BodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/bind", middlewares.MaxBodyBytes(32), func(ctx *gin.Context) {
		var req handlers.SignInRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusNoContent)
	})

	body := `{"email":"ada@corp.test","password":"` + strings.Repeat("x", 64) + `"}`

	tests := []struct {
		name          string
		contentLength int64
	}{
		{"declared length", int64(len(body))},
		{"streamed body", -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			req.ContentLength = tc.contentLength

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusRequestEntityTooLarge, w.Body.String())
			}

			var resp bindErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}
			if resp.Error.Code != "body_too_large" {
				t.Fatalf("expected body_too_large, got %q", resp.Error.Code)
			}
		})
	}
}

func TestRegisterValidators_Succeeds(t *testing.T) {
	if err := handlers.RegisterValidators(); err != nil {
		t.Fatalf("RegisterValidators: %v", err)
	}
}
