package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tasknest/tasknest/database"
	"tasknest/tasknest/models"
	"tasknest/tasknest/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// MockAuthService backs the auth middleware and the token endpoint in route
// tests. Token "token-alice" resolves to user 1, "token-bob" to user 2.
type MockAuthService struct{}

func mockAlice() models.User {
	return models.User{ID: 1, Username: "al", Email: "a@x.com", Tasks: []models.Task{}}
}

func mockBob() models.User {
	return models.User{ID: 2, Username: "bee", Email: "b@x.com", Tasks: []models.Task{}}
}

func (m *MockAuthService) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (m *MockAuthService) ComparePasswords(hashedPassword, password string) error {
	if hashedPassword == "hashed:"+password {
		return nil
	}
	return services.ErrInvalidCredentials
}

func (m *MockAuthService) AuthenticateCredentials(db *database.Database, username, password string) (models.User, error) {
	if username == "al" && password == "pw" {
		return mockAlice(), nil
	}
	if username == "cara" && password == "pw" {
		user := models.User{ID: 3, Username: "cara", Email: "c@x.com"}
		token := "cccccccccccccccccccccccccccccccc"
		expiration := time.Now().UTC().Add(2 * time.Hour)
		user.Token = &token
		user.TokenExpiration = &expiration
		return user, nil
	}
	return models.User{}, services.ErrInvalidCredentials
}

func (m *MockAuthService) IssueToken(db *database.Database, user *models.User) (services.TokenResult, error) {
	if user.Token != nil && user.TokenExpiration != nil &&
		user.TokenExpiration.After(time.Now().UTC().Add(time.Minute)) {
		return services.TokenResult{Token: *user.Token, Expiration: *user.TokenExpiration}, nil
	}
	return services.TokenResult{
		Token:      "abadcafeabadcafeabadcafeabadcafe",
		Expiration: time.Now().UTC().Add(7 * 24 * time.Hour),
		Fresh:      true,
	}, nil
}

func (m *MockAuthService) ValidateToken(db *database.Database, tokenString string) (models.User, error) {
	switch tokenString {
	case "token-alice":
		return mockAlice(), nil
	case "token-bob":
		return mockBob(), nil
	}
	return models.User{}, services.ErrInvalidToken
}

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	RegisterAuthRoutes(router, &database.Database{}, &MockAuthService{})
	return router
}

func TestGetToken(t *testing.T) {
	router := setupAuthRouter()

	t.Run("Missing Credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/token/", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("Bad Credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/token/", nil)
		req.SetBasicAuth("al", "wrong")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("First Issuance Includes Expiration", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/token/", nil)
		req.SetBasicAuth("al", "pw")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"token":"abadcafeabadcafeabadcafeabadcafe"`)
		assert.Contains(t, w.Body.String(), "tokenExpiration")
	})

	t.Run("Reused Token Omits Expiration", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/token/", nil)
		req.SetBasicAuth("cara", "pw")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"token":"cccccccccccccccccccccccccccccccc"`)
		assert.NotContains(t, w.Body.String(), "tokenExpiration")
	})
}
