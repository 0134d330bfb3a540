package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/forkbook/backend/internal/database"
	"github.com/forkbook/backend/internal/middleware"
	"github.com/forkbook/backend/internal/models"
	"github.com/forkbook/backend/internal/service"
	"github.com/forkbook/backend/internal/storage"
)

// TestEnv holds the database, services and router under test.
type TestEnv struct {
	DB          *gorm.DB
	AuthService *service.AuthService
	Store       *storage.LocalStore
	Router      *gin.Engine
}

// SetupTestEnv builds a full router backed by an in-memory database and
// a temp-dir picture store.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	authService := service.NewAuthService(db, "test-secret")
	recipeService := service.NewRecipeService(db, store, 15)

	authHandler := NewAuthHandler(authService)
	recipeHandler := NewRecipeHandler(recipeService, store)

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	open := v1.Group("")
	open.Use(middleware.OptionalAuthMiddleware(authService))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))

	recipeHandler.RegisterRoutes(open, protected)

	return &TestEnv{
		DB:          db,
		AuthService: authService,
		Store:       store,
		Router:      router,
	}
}

// CreateTestUser inserts a user with the given role and returns it with
// a valid token.
func CreateTestUser(t *testing.T, env *TestEnv, role models.Role) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Name:         "Test User",
		Email:        fmt.Sprintf("user%d@example.com", nextUserSeq()),
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := env.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := env.AuthService.GenerateToken(&user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return &user, token
}

var userSeq int

func nextUserSeq() int {
	userSeq++
	return userSeq
}

// CreateTestRecipe inserts a recipe owned by the given user.
func CreateTestRecipe(t *testing.T, env *TestEnv, owner *models.User, name string, visibility models.Visibility) *models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		UserID:      owner.ID,
		Name:        name,
		CuisineType: "Italian",
		Ingredients: "200g pasta\n4 eggs",
		Steps:       "1. Boil pasta\n2. Mix",
		Visibility:  visibility,
	}
	if err := env.DB.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return &recipe
}

// PerformRequest makes an HTTP request against the router. A non-empty
// token is sent as a bearer header.
func PerformRequest(router *gin.Engine, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// MultipartForm builds a multipart body from fields plus an optional
// file part named "picture".
func MultipartForm(t *testing.T, fields map[string]string, pictureName string, pictureData []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if pictureName != "" {
		part, err := writer.CreateFormFile("picture", pictureName)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(pictureData); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

// JSONRequest performs a JSON request.
func JSONRequest(t *testing.T, router *gin.Engine, method, path, token string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	return PerformRequest(router, method, path, token, bytes.NewReader(payload), "application/json")
}
