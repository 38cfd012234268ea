package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"articles-api/internal/events"
	"articles-api/internal/hash"
	authmw "articles-api/internal/middleware/auth"
	"articles-api/internal/models"
	"articles-api/internal/token"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// a second pooled connection would see its own empty :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Article{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

type testEnv struct {
	DB       *gorm.DB
	Tokens   *token.Issuer
	Users    *UserHandler
	Articles *ArticleHandler
	Auth     *authmw.Middleware

	e *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	db := newTestDB(t)
	tokens := token.NewIssuer([]byte("test_secret"), time.Hour)
	producer := &events.Producer{}

	return &testEnv{
		DB:       db,
		Tokens:   tokens,
		Users:    &UserHandler{DB: db, Tokens: tokens, Producer: producer},
		Articles: &ArticleHandler{DB: db, Producer: producer},
		Auth:     &authmw.Middleware{DB: db, Tokens: tokens},
		e:        echo.New(),
	}
}

func (env *testEnv) doJSON(t *testing.T, method, target string, payload any) (*httptest.ResponseRecorder, echo.Context) {
	var body *bytes.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(bodyBytes)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createUser(t *testing.T, email, password string, admin bool) *models.User {
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Name:         "Test",
		Surname:      "User",
		Email:        email,
		PasswordHash: pwHash,
		Admin:        admin,
	}
	require.NoError(t, env.DB.Create(&user).Error)
	return &user
}

func (env *testEnv) createArticle(t *testing.T, owner *models.User, title string) *models.Article {
	article := models.Article{
		Title:       title,
		Description: "a description",
		SourceURL:   "https://example.com/post",
		UserID:      owner.ID,
	}
	require.NoError(t, env.DB.Create(&article).Error)
	return &article
}

func (env *testEnv) tokenFor(t *testing.T, user *models.User) string {
	raw, err := env.Tokens.Issue(strconv.FormatUint(uint64(user.ID), 10))
	require.NoError(t, err)
	return raw
}

func (env *testEnv) authorize(c echo.Context, rawToken string) {
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+rawToken)
}

// callAuthed runs the handler behind the RequireUser middleware, the way the
// router wires it.
func (env *testEnv) callAuthed(handler echo.HandlerFunc, c echo.Context) error {
	return env.Auth.RequireUser(handler)(c)
}

func requireHTTPError(t *testing.T, err error, code int) {
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
