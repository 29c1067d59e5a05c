package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/devcamper-api/config"
	"github.com/sahilchouksey/devcamper-api/database"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/services"
	"github.com/sahilchouksey/devcamper-api/services/geocoder"
	"github.com/sahilchouksey/devcamper-api/services/storage"
	"github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"github.com/sahilchouksey/devcamper-api/utils/response"
	"github.com/sahilchouksey/devcamper-api/utils/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const bostonAddress = "233 Bay State Rd Boston MA 02215"

var testLocations = geocoder.Static{
	"02215":                            {Latitude: 42.3505, Longitude: -71.1054, Zipcode: "02215", State: "MA", City: "Boston"},
	"233 bay state rd boston ma 02215": {Latitude: 42.3505, Longitude: -71.1054, Street: "233 Bay State Rd", City: "Boston", State: "MA", Zipcode: "02215", Country: "US"},
}

type sentMail struct {
	to, name, url string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendPasswordResetEmail(_ context.Context, to, name, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, name: name, url: url})
	return nil
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, []byte, string) (string, error) {
	return "", errors.New("disk full")
}

func (failingStore) Delete(context.Context, string) error { return nil }

type testServer struct {
	db      *gorm.DB
	app     *fiber.App
	jwt     *auth.JWTManager
	mailer  *fakeMailer
	env     *config.EnviornmentVariable
	uploads string
}

// envelope is the union of the response shapes
type envelope struct {
	Success    bool                 `json:"success"`
	Count      *int                 `json:"count"`
	Pagination *response.Pagination `json:"pagination"`
	Data       json.RawMessage      `json:"data"`
	Error      string               `json:"error"`
	Token      string               `json:"token"`
}

func newTestServer(t *testing.T, opts ...func(*Dependencies)) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	public := t.TempDir()
	uploads := filepath.Join(public, "uploads")
	photos, err := storage.NewLocalStore(uploads, "/uploads")
	require.NoError(t, err)

	env := &config.EnviornmentVariable{
		GO_ENV:            "production",
		JWT_SECRET:        "test-secret",
		JWT_EXPIRE:        time.Hour,
		JWT_COOKIE_EXPIRE: 30,
		MAX_FILE_UPLOAD:   1000000,
		PUBLIC_DIR:        public,
		FILE_UPLOAD_PATH:  uploads,
		ALLOWED_ORIGINS:   "*",
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{Secret: env.JWT_SECRET, Expiry: env.JWT_EXPIRE})
	mailer := &fakeMailer{}
	deps := Dependencies{
		Env:        env,
		Store:      database.NewGORMStore(db, zap.NewNop()),
		Logger:     zap.NewNop(),
		JWTManager: jwtManager,
		Blacklist:  auth.NewBlacklistService(db),
		Photos:     photos,
		Mailer:     mailer,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	if deps.Bootcamps == nil {
		deps.Bootcamps = services.NewBootcampService(db, testLocations, deps.Photos, zap.NewNop())
	}

	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler(zap.NewNop())})
	SetupRoutes(app, deps)

	return &testServer{db: db, app: app, jwt: jwtManager, mailer: mailer, env: env, uploads: uploads}
}

func (s *testServer) token(t *testing.T, u *model.User) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(u.ID, u.Email, u.Role, u.TokenVersion)
	require.NoError(t, err)
	return token
}

// do sends a JSON request, authenticated when token is not empty
func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func decode(t *testing.T, raw json.RawMessage, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, dest), string(raw))
}

func TestPing(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, "GET", "/api/v1/nope", nil, "")
	assert.Equal(t, 404, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) {
		d.Metrics = middleware.NewMetrics()
	})

	resp, _ := s.do(t, "GET", "/api/v1/bootcamps/42", nil, "")
	require.Equal(t, 404, resp.StatusCode)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `devcamper_http_requests_total{method="GET",route="/api/v1/bootcamps/:id",status="404"} 1`)
}

func TestMissingResources(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin", model.RoleAdmin)
	token := s.token(t, admin)

	messages := map[string]string{
		"bootcamps": "Bootcamp not found with id of 999",
		"courses":   "No course with the id of 999",
		"reviews":   "No review found with the id of 999",
	}
	bodies := map[string]interface{}{
		"GET":    nil,
		"PUT":    map[string]string{"title": "Renamed"},
		"DELETE": nil,
	}

	for resource, message := range messages {
		for method, body := range bodies {
			resp, env := s.do(t, method, "/api/v1/"+resource+"/999", body, token)
			assert.Equal(t, 404, resp.StatusCode, "%s %s", method, resource)
			assert.Equal(t, message, env.Error, "%s %s", method, resource)
		}
	}
}
