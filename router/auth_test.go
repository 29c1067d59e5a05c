package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/middleware"
	"github.com/sahilchouksey/devcamper-api/utils/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func tokenCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func createUserWithPassword(t *testing.T, s *testServer, name, role, password string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return testutil.CreateUser(t, s.db, name, role, hash)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	body := map[string]interface{}{
		"name":     "John Doe",
		"email":    "John@Example.com",
		"password": "123456",
		"role":     "publisher",
	}
	resp, env := s.do(t, "POST", "/api/v1/auth/register", body, "")
	require.Equal(t, 200, resp.StatusCode, env.Error)
	assert.True(t, env.Success)
	require.NotEmpty(t, env.Token)

	cookie := tokenCookie(resp)
	require.NotNil(t, cookie)
	assert.Equal(t, env.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var user model.User
	require.NoError(t, s.db.Where("email = ?", "john@example.com").First(&user).Error)
	assert.Equal(t, model.RolePublisher, user.Role)
	assert.NotEqual(t, "123456", user.PasswordHash)

	resp, env = s.do(t, "POST", "/api/v1/auth/register", body, "")
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Duplicate field value entered", env.Error)

	body["email"] = "admin@example.com"
	body["role"] = "admin"
	resp, _ = s.do(t, "POST", "/api/v1/auth/register", body, "")
	assert.Equal(t, 400, resp.StatusCode)

	resp, env = s.do(t, "POST", "/api/v1/auth/login", map[string]string{"email": "john@example.com", "password": "123456"}, "")
	require.Equal(t, 200, resp.StatusCode, env.Error)
	assert.NotEmpty(t, env.Token)
	assert.NotNil(t, tokenCookie(resp))

	resp, env = s.do(t, "POST", "/api/v1/auth/login", map[string]string{"email": "john@example.com", "password": "wrong"}, "")
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", env.Error)

	resp, env = s.do(t, "POST", "/api/v1/auth/login", map[string]string{"email": "nobody@example.com", "password": "123456"}, "")
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", env.Error)

	resp, env = s.do(t, "POST", "/api/v1/auth/login", map[string]string{"email": "john@example.com"}, "")
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Please provide an email and password", env.Error)
}

func TestMeWithCookieAndLogout(t *testing.T) {
	s := newTestServer(t)
	createUserWithPassword(t, s, "jane", model.RoleUser, "123456")

	resp, env := s.do(t, "POST", "/api/v1/auth/login", map[string]string{"email": "jane@example.com", "password": "123456"}, "")
	require.Equal(t, 200, resp.StatusCode, env.Error)
	cookie := tokenCookie(resp)
	require.NotNil(t, cookie)

	me := func() (*http.Response, envelope) {
		req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: cookie.Value})
		return s.send(t, req)
	}

	resp, env = me()
	require.Equal(t, 200, resp.StatusCode, env.Error)
	var user model.User
	decode(t, env.Data, &user)
	assert.Equal(t, "jane", user.Name)
	assert.NotContains(t, string(env.Data), "password")

	req := httptest.NewRequest("GET", "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: cookie.Value})
	resp, env = s.send(t, req)
	require.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{}`, string(env.Data))
	cleared := tokenCookie(resp)
	require.NotNil(t, cleared)
	assert.Equal(t, "none", cleared.Value)

	resp, env = me()
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Not authorized to access this route", env.Error)

	// Logging out without a token still clears the cookie
	resp, _ = s.do(t, "GET", "/api/v1/auth/logout", nil, "")
	assert.Equal(t, 200, resp.StatusCode)
}

func TestUpdateDetails(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "jane", model.RoleUser)
	token := s.token(t, user)

	resp, env := s.do(t, "PUT", "/api/v1/auth/updatedetails", map[string]string{"name": "Jane Doe", "email": "Jane.Doe@example.com"}, token)
	require.Equal(t, 200, resp.StatusCode, env.Error)
	var updated model.User
	decode(t, env.Data, &updated)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, "jane.doe@example.com", updated.Email)
	assert.Equal(t, model.RoleUser, updated.Role)

	resp, _ = s.do(t, "PUT", "/api/v1/auth/updatedetails", map[string]string{"email": "nope"}, token)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestUpdatePasswordInvalidatesTokens(t *testing.T) {
	s := newTestServer(t)
	user := createUserWithPassword(t, s, "jane", model.RoleUser, "123456")
	oldToken := s.token(t, user)

	resp, env := s.do(t, "PUT", "/api/v1/auth/updatepassword", map[string]string{"currentPassword": "bad", "newPassword": "654321"}, oldToken)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Password is incorrect", env.Error)

	resp, env = s.do(t, "PUT", "/api/v1/auth/updatepassword", map[string]string{"currentPassword": "123456", "newPassword": "654321"}, oldToken)
	require.Equal(t, 200, resp.StatusCode, env.Error)
	newToken := env.Token
	require.NotEmpty(t, newToken)

	resp, _ = s.do(t, "GET", "/api/v1/auth/me", nil, oldToken)
	assert.Equal(t, 401, resp.StatusCode)
	resp, _ = s.do(t, "GET", "/api/v1/auth/me", nil, newToken)
	assert.Equal(t, 200, resp.StatusCode)

	resp, _ = s.do(t, "POST", "/api/v1/auth/login", map[string]string{"email": "jane@example.com", "password": "654321"}, "")
	assert.Equal(t, 200, resp.StatusCode)
}

func TestForgotAndResetPassword(t *testing.T) {
	s := newTestServer(t)
	createUserWithPassword(t, s, "jane", model.RoleUser, "123456")

	resp, env := s.do(t, "POST", "/api/v1/auth/forgotpassword", map[string]string{"email": "ghost@example.com"}, "")
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "There is no user with that email", env.Error)

	resp, env = s.do(t, "POST", "/api/v1/auth/forgotpassword", map[string]string{"email": "jane@example.com"}, "")
	require.Equal(t, 200, resp.StatusCode, env.Error)
	assert.JSONEq(t, `"Email sent"`, string(env.Data))

	require.Len(t, s.mailer.sent, 1)
	mail := s.mailer.sent[0]
	assert.Equal(t, "jane@example.com", mail.to)
	assert.Equal(t, "jane", mail.name)
	const prefix = "http://example.com/api/v1/auth/resetpassword/"
	require.True(t, strings.HasPrefix(mail.url, prefix), mail.url)
	resetToken := strings.TrimPrefix(mail.url, prefix)

	// Only the hash is stored
	var stored model.PasswordResetToken
	require.NoError(t, s.db.First(&stored).Error)
	assert.Equal(t, auth.HashResetToken(resetToken), stored.TokenHash)

	resp, env = s.do(t, "PUT", "/api/v1/auth/resetpassword/not-the-token", map[string]string{"password": "abcdef"}, "")
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Invalid token", env.Error)

	resp, env = s.do(t, "PUT", "/api/v1/auth/resetpassword/"+resetToken, map[string]string{"password": "abcdef"}, "")
	require.Equal(t, 200, resp.StatusCode, env.Error)
	assert.NotEmpty(t, env.Token)

	resp, _ = s.do(t, "PUT", "/api/v1/auth/resetpassword/"+resetToken, map[string]string{"password": "ghijkl"}, "")
	assert.Equal(t, 400, resp.StatusCode)

	resp, _ = s.do(t, "POST", "/api/v1/auth/login", map[string]string{"email": "jane@example.com", "password": "abcdef"}, "")
	assert.Equal(t, 200, resp.StatusCode)
}

func TestForgotPasswordMailFailure(t *testing.T) {
	s := newTestServer(t)
	createUserWithPassword(t, s, "jane", model.RoleUser, "123456")
	s.mailer.err = errors.New("connection refused")

	resp, env := s.do(t, "POST", "/api/v1/auth/forgotpassword", map[string]string{"email": "jane@example.com"}, "")
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "Email could not be sent", env.Error)

	var count int64
	s.db.Unscoped().Model(&model.PasswordResetToken{}).Count(&count)
	assert.Zero(t, count)
}

func TestForgotPasswordLogsFailedCleanup(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := newTestServer(t, func(d *Dependencies) { d.Logger = zap.New(core) })
	createUserWithPassword(t, s, "jane", model.RoleUser, "123456")
	s.mailer.err = errors.New("connection refused")

	require.NoError(t, s.db.Callback().Delete().Before("gorm:delete").Register("test:fail_reset_delete", func(db *gorm.DB) {
		if db.Statement.Table == "password_reset_tokens" {
			db.AddError(errors.New("database is locked"))
		}
	}))

	resp, env := s.do(t, "POST", "/api/v1/auth/forgotpassword", map[string]string{"email": "jane@example.com"}, "")
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "Email could not be sent", env.Error)

	entries := logs.FilterMessage("delete unsent reset token").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "database is locked", entries[0].ContextMap()["error"])
}

func TestResetPasswordRollsBackOnFailure(t *testing.T) {
	s := newTestServer(t)
	user := createUserWithPassword(t, s, "jane", model.RoleUser, "123456")

	resp, _ := s.do(t, "POST", "/api/v1/auth/forgotpassword", map[string]string{"email": "jane@example.com"}, "")
	require.Equal(t, 200, resp.StatusCode)
	require.Len(t, s.mailer.sent, 1)
	resetToken := s.mailer.sent[0].url[strings.LastIndex(s.mailer.sent[0].url, "/")+1:]

	failUsers := true
	require.NoError(t, s.db.Callback().Update().Before("gorm:update").Register("test:fail_user_update", func(db *gorm.DB) {
		if failUsers && db.Statement.Table == "users" {
			db.AddError(errors.New("disk full"))
		}
	}))

	resp, _ = s.do(t, "PUT", "/api/v1/auth/resetpassword/"+resetToken, map[string]string{"password": "abcdef"}, "")
	assert.Equal(t, 500, resp.StatusCode)

	// The token stays usable and the password is unchanged
	var stored model.PasswordResetToken
	require.NoError(t, s.db.First(&stored).Error)
	assert.Nil(t, stored.UsedAt)
	var reloaded model.User
	require.NoError(t, s.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, user.PasswordHash, reloaded.PasswordHash)
	assert.Equal(t, user.TokenVersion, reloaded.TokenVersion)

	failUsers = false
	resp, env := s.do(t, "PUT", "/api/v1/auth/resetpassword/"+resetToken, map[string]string{"password": "abcdef"}, "")
	require.Equal(t, 200, resp.StatusCode, env.Error)
}
