package router

import (
	"fmt"
	"testing"

	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersAdminOnly(t *testing.T) {
	s := newTestServer(t)
	publisher := testutil.CreateUser(t, s.db, "publisher", model.RolePublisher)

	resp, env := s.do(t, "GET", "/api/v1/users", nil, s.token(t, publisher))
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, "User role publisher is not authorized to access this route", env.Error)

	resp, _ = s.do(t, "GET", "/api/v1/users", nil, "")
	assert.Equal(t, 401, resp.StatusCode)
}

func TestUsersCRUD(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin", model.RoleAdmin)
	testutil.CreateUser(t, s.db, "alice", model.RoleUser)
	testutil.CreateUser(t, s.db, "bob", model.RolePublisher)
	token := s.token(t, admin)

	resp, env := s.do(t, "GET", "/api/v1/users?role=user", nil, token)
	require.Equal(t, 200, resp.StatusCode, env.Error)
	assert.Equal(t, 1, *env.Count)

	resp, env = s.do(t, "POST", "/api/v1/users", map[string]string{
		"name":     "Carol",
		"email":    "carol@example.com",
		"password": "123456",
		"role":     "publisher",
	}, token)
	require.Equal(t, 201, resp.StatusCode, env.Error)
	var carol model.User
	decode(t, env.Data, &carol)
	assert.Equal(t, model.RolePublisher, carol.Role)
	path := fmt.Sprintf("/api/v1/users/%d", carol.ID)

	resp, env = s.do(t, "GET", path, nil, token)
	require.Equal(t, 200, resp.StatusCode)

	resp, env = s.do(t, "PUT", path, map[string]string{"role": "user"}, token)
	require.Equal(t, 200, resp.StatusCode, env.Error)
	var updated model.User
	decode(t, env.Data, &updated)
	assert.Equal(t, model.RoleUser, updated.Role)
	assert.Equal(t, "Carol", updated.Name)

	resp, _ = s.do(t, "PUT", path, map[string]string{"role": "root"}, token)
	assert.Equal(t, 400, resp.StatusCode)

	resp, env = s.do(t, "DELETE", fmt.Sprintf("/api/v1/users/%d", admin.ID), nil, token)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Cannot delete your own account", env.Error)

	resp, env = s.do(t, "DELETE", path, nil, token)
	require.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{}`, string(env.Data))

	resp, env = s.do(t, "GET", path, nil, token)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("No user with the id of %d", carol.ID), env.Error)
}

func TestRoleChangeInvalidatesTokens(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "admin", model.RoleAdmin)
	bob := testutil.CreateUser(t, s.db, "bob", model.RolePublisher)
	bobToken := s.token(t, bob)

	resp, _ := s.do(t, "PUT", fmt.Sprintf("/api/v1/users/%d", bob.ID), map[string]string{"role": "user"}, s.token(t, admin))
	require.Equal(t, 200, resp.StatusCode)

	resp, _ = s.do(t, "GET", "/api/v1/auth/me", nil, bobToken)
	assert.Equal(t, 401, resp.StatusCode)
}
