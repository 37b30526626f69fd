package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pennywise-app/pennywise-backend/internal/domain"
	"github.com/pennywise-app/pennywise-backend/internal/service"
	"github.com/pennywise-app/pennywise-backend/internal/testutil"
)

func newAPIKeyHandler() (*APIKeyHandler, *testutil.MockAPIKeyRepository) {
	repo := testutil.NewMockAPIKeyRepository()
	return NewAPIKeyHandler(service.NewAPIKeyService(repo)), repo
}

func TestCreateAPIKey_Success(t *testing.T) {
	e := echo.New()
	handler, _ := newAPIKeyHandler()
	userID := uuid.New()

	body := `{"name":"CI importer","permissions":["transactions.create"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-keys", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateAPIKey(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response CreateAPIKeyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !strings.HasPrefix(response.Key, "pw_") {
		t.Errorf("Expected plaintext key with pw_ prefix, got %q", response.Key)
	}
	if response.Warning == "" {
		t.Error("Expected a copy-it-now warning")
	}
	if response.Name != "CI importer" {
		t.Errorf("Expected name 'CI importer', got %q", response.Name)
	}
}

func TestCreateAPIKey_InvalidPermission(t *testing.T) {
	e := echo.New()
	handler, _ := newAPIKeyHandler()
	userID := uuid.New()

	body := `{"name":"bad","permissions":["admin.everything"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-keys", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateAPIKey(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "permissions" {
		t.Errorf("Expected a 'permissions' field error, got %+v", problem.Errors)
	}
}

func TestCreateAPIKey_MalformedExpiry(t *testing.T) {
	e := echo.New()
	handler, _ := newAPIKeyHandler()
	userID := uuid.New()

	body := `{"name":"key","permissions":["transactions.create"],"expiresAt":"next tuesday"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-keys", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateAPIKey(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != "expiresAt" {
		t.Errorf("Expected an 'expiresAt' field error, got %+v", problem.Errors)
	}
}

func TestCreateAPIKey_LimitConflict(t *testing.T) {
	e := echo.New()
	handler, repo := newAPIKeyHandler()
	userID := uuid.New()

	for i := 0; i < 10; i++ {
		repo.AddKey(&domain.APIKey{
			UserID:      userID,
			Name:        "existing",
			KeyHash:     uuid.NewString(),
			Permissions: []domain.APIKeyPermission{domain.PermissionTransactionsCreate},
		})
	}

	body := `{"name":"one too many","permissions":["transactions.create"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-keys", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateAPIKey(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestGetAPIKeys_NeverIncludesSecrets(t *testing.T) {
	e := echo.New()
	handler, repo := newAPIKeyHandler()
	userID := uuid.New()

	repo.AddKey(&domain.APIKey{
		UserID:      userID,
		Name:        "importer",
		KeyHash:     "deadbeef",
		KeyPrefix:   "pw_abcdefgh...",
		Permissions: []domain.APIKeyPermission{domain.PermissionTransactionsCreate},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/api-keys", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.GetAPIKeys(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	if strings.Contains(rec.Body.String(), "deadbeef") {
		t.Error("Expected the key hash to never appear in responses")
	}

	var response []APIKeyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 key, got %d", len(response))
	}
	if response[0].KeyPrefix != "pw_abcdefgh..." {
		t.Errorf("Expected display prefix, got %q", response[0].KeyPrefix)
	}
}

func TestRevokeAPIKey_Success(t *testing.T) {
	e := echo.New()
	handler, repo := newAPIKeyHandler()
	userID := uuid.New()

	key := &domain.APIKey{
		UserID:      userID,
		Name:        "importer",
		KeyHash:     "cafe",
		Permissions: []domain.APIKeyPermission{domain.PermissionTransactionsCreate},
	}
	repo.AddKey(key)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/api-keys/"+key.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(key.ID.String())
	setupUserContext(c, userID)

	if err := handler.RevokeAPIKey(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}

func TestRevokeAPIKey_NotFound(t *testing.T) {
	e := echo.New()
	handler, _ := newAPIKeyHandler()
	userID := uuid.New()

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/api-keys/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	setupUserContext(c, userID)

	if err := handler.RevokeAPIKey(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
