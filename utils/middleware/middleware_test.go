package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"github.com/sahilchouksey/devcamper-api/utils/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	app       *fiber.App
	jwt       *auth.JWTManager
	blacklist *auth.BlacklistService
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	jwtManager := auth.NewJWTManager(auth.JWTConfig{Secret: "secret", Expiry: time.Hour})
	blacklist := auth.NewBlacklistService(db)
	authMiddleware := NewAuthMiddleware(jwtManager, blacklist, db)

	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler(zap.NewNop())})
	app.Get("/me", authMiddleware.Required(), func(c *fiber.Ctx) error {
		user, err := MustUser(c)
		if err != nil {
			return err
		}
		return c.SendString(user.Name)
	})
	app.Get("/publish", authMiddleware.Required(), authMiddleware.RequireRole(model.RolePublisher, model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return &fixture{db: db, app: app, jwt: jwtManager, blacklist: blacklist}
}

func (f *fixture) token(t *testing.T, u *model.User) (string, string) {
	token, jti, err := f.jwt.GenerateAccessToken(u.ID, u.Email, u.Role, u.TokenVersion)
	require.NoError(t, err)
	return token, jti
}

func (f *fixture) do(t *testing.T, req *http.Request) (int, string) {
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRequiredAcceptsBearerAndCookie(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "john", model.RoleUser)
	token, _ := f.token(t, user)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, body := f.do(t, req)
	assert.Equal(t, 200, status)
	assert.Equal(t, "john", body)

	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	status, body = f.do(t, req)
	assert.Equal(t, 200, status)
	assert.Equal(t, "john", body)
}

func TestRequiredRejects(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "john", model.RoleUser)

	status, body := f.do(t, httptest.NewRequest("GET", "/me", nil))
	assert.Equal(t, 401, status)
	assert.JSONEq(t, `{"success":false,"error":"Not authorized to access this route"}`, body)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	status, _ = f.do(t, req)
	assert.Equal(t, 401, status)

	revoked, jti := f.token(t, user)
	require.NoError(t, f.blacklist.RevokeToken(context.Background(), jti, user.ID, time.Now().Add(time.Hour), "logout"))
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+revoked)
	status, _ = f.do(t, req)
	assert.Equal(t, 401, status)

	stale, _ := f.token(t, user)
	require.NoError(t, f.blacklist.RevokeAllUserTokens(context.Background(), user.ID))
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+stale)
	status, _ = f.do(t, req)
	assert.Equal(t, 401, status)

	ghost := &model.User{ID: 999, Email: "ghost@example.com", Role: model.RoleAdmin}
	token, _ := f.token(t, ghost)
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, _ = f.do(t, req)
	assert.Equal(t, 401, status)
}

func TestRequireRole(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "john", model.RoleUser)
	publisher := testutil.CreateUser(t, f.db, "jane", model.RolePublisher)

	token, _ := f.token(t, user)
	req := httptest.NewRequest("GET", "/publish", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, body := f.do(t, req)
	assert.Equal(t, 403, status)
	assert.Contains(t, body, "User role user is not authorized")

	token, _ = f.token(t, publisher)
	req = httptest.NewRequest("GET", "/publish", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, _ = f.do(t, req)
	assert.Equal(t, 200, status)
}

func TestRateLimitEnvelope(t *testing.T) {
	app := fiber.New()
	SetupSecurity(app, SecurityConfig{AllowedOrigins: "*", RateLimitRequests: 2, RateLimitWindow: time.Minute})
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"success":false,"error":"Too many requests, please try again later"}`, string(body))
}

func TestMetrics(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler(zap.NewNop())})
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())
	app.Get("/bootcamps/:id", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/bootcamps/12", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body),
		`devcamper_http_requests_total{method="GET",route="/bootcamps/:id",status="404"} 1`))
}
