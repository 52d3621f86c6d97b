package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"prompteria-api/logger"
	"prompteria-api/models"
	"prompteria-api/repositories"
	"prompteria-api/utils"
)

const (
	GoogleTokenInfoURL = "https://www.googleapis.com/oauth2/v3/tokeninfo"
	TokenTTL           = 30 * 24 * time.Hour
)

// GoogleProfile is the subset of the tokeninfo response used for sign-in.
type GoogleProfile struct {
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Audience      string `json:"aud"`
}

// IdentityVerifier resolves a provider id token to a verified profile.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// GoogleVerifier checks id tokens against Google's tokeninfo endpoint.
type GoogleVerifier struct {
	client   *http.Client
	endpoint string
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return NewGoogleVerifierWithEndpoint(&http.Client{Timeout: 10 * time.Second}, GoogleTokenInfoURL, clientID)
}

func NewGoogleVerifierWithEndpoint(client *http.Client, endpoint, clientID string) *GoogleVerifier {
	return &GoogleVerifier{client: client, endpoint: endpoint, clientID: clientID}
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tokeninfo: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(ErrUnauthorized, "Invalid Google token")
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decode tokeninfo: %w", ErrUpstream, err)
	}

	if v.clientID != "" && profile.Audience != v.clientID {
		return nil, newError(ErrUnauthorized, "Invalid Google token")
	}
	if profile.EmailVerified == "false" || !utils.IsValidEmail(profile.Email) {
		return nil, newError(ErrUnauthorized, "Google account has no verified email")
	}

	return &profile, nil
}

// Claims are the session token claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SignInResult is returned by a successful sign-in.
type SignInResult struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	IsNewUser bool         `json:"is_new_user"`
}

type AuthService struct {
	users     UserStore
	verifier  IdentityVerifier
	mailer    Mailer
	jwtSecret []byte
	now       func() time.Time
	log       logger.Logger
}

func NewAuthService(users UserStore, verifier IdentityVerifier, mailer Mailer, jwtSecret string, log logger.Logger) *AuthService {
	return &AuthService{
		users:     users,
		verifier:  verifier,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
		log:       log,
	}
}

// SignInWithGoogle verifies the id token, finds or creates the account and
// issues a session token.
func (s *AuthService) SignInWithGoogle(ctx context.Context, idToken string) (*SignInResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, newError(ErrInvalidInput, "Missing id token")
	}

	profile, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, created, err := s.findOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if created {
		s.log.Info("User created", logger.String("user_id", user.ID), logger.String("name", user.Name))
		if err := s.mailer.SendWelcomeEmail(user.Email, user.Name); err != nil {
			s.log.Warn("Welcome email failed", logger.String("user_id", user.ID), logger.Error(err))
		}
	}

	return &SignInResult{Token: token, User: user, IsNewUser: created}, nil
}

// Session returns the signed-in user.
func (s *AuthService) Session(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, newError(ErrUnauthorized, "Unauthorized")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "Unauthorized")
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return user, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken validates a session token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, newError(ErrUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) findOrCreate(ctx context.Context, profile *GoogleProfile) (*models.User, bool, error) {
	user, err := s.users.FindByEmail(ctx, profile.Email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	user, created, err := s.users.CreateWithUniqueName(ctx, &models.User{
		ID:    uuid.New().String(),
		Email: profile.Email,
		Image: profile.Picture,
	}, models.BaseNameFromProfile(profile.Name, profile.Email))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return user, created, nil
}
