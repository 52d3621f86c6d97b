package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prompteria-api/logger"
	"prompteria-api/models"
	"prompteria-api/services"
)

const testSecret = "test-secret"

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) SendWelcomeEmail(email, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

// tokenInfoServer answers tokeninfo lookups from a fixed token table.
func tokenInfoServer(t *testing.T, profiles map[string]services.GoogleProfile) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, ok := profiles[r.URL.Query().Get("id_token")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(profile)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupAuth(t *testing.T, clientID string) (*services.AuthService, *recordingMailer) {
	t.Helper()

	srv := tokenInfoServer(t, map[string]services.GoogleProfile{
		"ann-token": {Email: "ann@example.com", EmailVerified: "true", Name: "Ann Lee", Picture: "https://img/ann", Audience: "client-1"},
		"ann-alt":   {Email: "ann.lee@example.org", EmailVerified: "true", Name: "Ann-Lee!", Audience: "client-1"},
		"other-aud": {Email: "x@example.com", EmailVerified: "true", Name: "X", Audience: "someone-else"},
		"no-email":  {EmailVerified: "true", Name: "Nobody", Audience: "client-1"},
	})

	_, users, _ := setupStore(t)
	verifier := services.NewGoogleVerifierWithEndpoint(srv.Client(), srv.URL, clientID)
	mailer := &recordingMailer{}
	return services.NewAuthService(users, verifier, mailer, testSecret, logger.NewNop()), mailer
}

func TestAuthService_SignInCreatesThenFindsUser(t *testing.T) {
	svc, mailer := setupAuth(t, "client-1")
	ctx := context.Background()

	first, err := svc.SignInWithGoogle(ctx, "ann-token")
	require.NoError(t, err)
	assert.True(t, first.IsNewUser)
	assert.Equal(t, "annlee", first.User.Name)
	assert.Equal(t, "https://img/ann", first.User.Image)

	again, err := svc.SignInWithGoogle(ctx, "ann-token")
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)
	assert.Equal(t, first.User.ID, again.User.ID)

	assert.Equal(t, []string{"ann@example.com"}, mailer.sent)
}

func TestAuthService_NameCollisionGetsSuffix(t *testing.T) {
	svc, _ := setupAuth(t, "client-1")
	ctx := context.Background()

	_, err := svc.SignInWithGoogle(ctx, "ann-token")
	require.NoError(t, err)

	second, err := svc.SignInWithGoogle(ctx, "ann-alt")
	require.NoError(t, err)
	assert.Equal(t, "annlee1", second.User.Name)
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	svc, mailer := setupAuth(t, "client-1")
	ctx := context.Background()

	for _, token := range []string{"unknown", "other-aud", "no-email"} {
		_, err := svc.SignInWithGoogle(ctx, token)
		assert.ErrorIs(t, err, services.ErrUnauthorized, token)
	}

	_, err := svc.SignInWithGoogle(ctx, "")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Empty(t, mailer.sent)
}

func TestAuthService_AudienceCheckSkippedWithoutClientID(t *testing.T) {
	svc, _ := setupAuth(t, "")

	_, err := svc.SignInWithGoogle(context.Background(), "other-aud")

	assert.NoError(t, err)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc, _ := setupAuth(t, "client-1")
	user := &models.User{ID: "u1", Email: "u1@example.com"}

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)
	assert.WithinDuration(t, claims.IssuedAt.Add(services.TokenTTL), claims.ExpiresAt.Time, 0)
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	svc, _ := setupAuth(t, "client-1")
	_, users, _ := setupStore(t)
	other := services.NewAuthService(users, nil, nil, "another-secret", logger.NewNop())

	foreign, err := other.IssueToken(&models.User{ID: "u1"})
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", foreign} {
		_, err := svc.ParseToken(token)
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	}
}

func TestAuthService_Session(t *testing.T) {
	svc, _ := setupAuth(t, "client-1")
	ctx := context.Background()

	result, err := svc.SignInWithGoogle(ctx, "ann-token")
	require.NoError(t, err)

	user, err := svc.Session(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)

	_, err = svc.Session(ctx, "deleted-user")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}
