package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"engage/internal/model"
	"engage/pkg/utils"
)

type stubIssuer struct{}

func (stubIssuer) Issue(userID int64, email string) (string, time.Time, error) {
	return "token-" + email, time.Now().Add(time.Hour), nil
}

// newFakeGoogle 模拟 token 与 userinfo 端点
func newFakeGoogle(t *testing.T, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		// RFC 7636: verifier 长度 43~128
		if len(r.Form.Get("code_verifier")) < 43 {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "google-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"email":          "Boss@Example.com",
			"email_verified": verified,
			"name":           "Boss",
			"picture":        "https://example.com/p.png",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAuthService(env *testEnv, srv *httptest.Server, admins []string) *AuthService {
	cfg := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return NewAuthService(env.store, stubIssuer{}, cfg, srv.URL+"/userinfo", admins, env.log)
}

func loginState(t *testing.T, svc *AuthService) string {
	t.Helper()
	u, err := url.Parse(svc.GenerateLoginURL())
	require.NoError(t, err)
	assert.Equal(t, "S256", u.Query().Get("code_challenge_method"))
	assert.NotEmpty(t, u.Query().Get("code_challenge"))
	return u.Query().Get("state")
}

func TestAuthService_HandleCallback(t *testing.T) {
	env := setupTestEnv(t)
	srv := newFakeGoogle(t, true)
	svc := newTestAuthService(env, srv, []string{"boss@example.com"})
	ctx := context.Background()

	state := loginState(t, svc)
	resp, err := svc.HandleCallback(ctx, "code", state)
	require.NoError(t, err)
	assert.Equal(t, "token-boss@example.com", resp.AccessToken)
	assert.Equal(t, "boss@example.com", resp.User.Email)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)

	t.Run("state 只能使用一次", func(t *testing.T) {
		_, err := svc.HandleCallback(ctx, "code", state)
		assert.ErrorIs(t, err, &AppError{Kind: KindUnauthenticated, Message: "認証の有効期限が切れました。もう一度ログインしてください"})
	})

	t.Run("再次登录不重复建用户", func(t *testing.T) {
		_, err := svc.HandleCallback(ctx, "code", loginState(t, svc))
		require.NoError(t, err)
		assert.Equal(t, int64(1), env.count(t, &model.User{}, "email = ?", "boss@example.com"))
	})
}

func TestAuthService_UnverifiedEmail(t *testing.T) {
	env := setupTestEnv(t)
	srv := newFakeGoogle(t, false)
	svc := newTestAuthService(env, srv, nil)

	_, err := svc.HandleCallback(context.Background(), "code", loginState(t, svc))
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindUnauthenticated, appErr.Kind)
	assert.Equal(t, int64(0), env.count(t, &model.User{}, "1 = 1"))
}

func TestAuthService_GenerateLoginURL(t *testing.T) {
	env := setupTestEnv(t)
	srv := newFakeGoogle(t, true)
	svc := newTestAuthService(env, srv, nil)

	u, err := url.Parse(svc.GenerateLoginURL())
	require.NoError(t, err)
	q := u.Query()

	state := q.Get("state")
	require.NotEmpty(t, state)
	verifier, ok := utils.GetCache(state)
	require.True(t, ok, "state 应写入缓存")
	assert.Equal(t, oauth2.S256ChallengeFromVerifier(verifier), q.Get("code_challenge"))
	assert.NotEqual(t, state, verifier)

	// 每次生成不同的 state
	other, err := url.Parse(svc.GenerateLoginURL())
	require.NoError(t, err)
	assert.NotEqual(t, state, other.Query().Get("state"))
}
