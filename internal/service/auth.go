package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/medup/billing-dashboard-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

// AuthService issues and validates the dashboard's access tokens. There
// is a single operator account, configured by environment.
type AuthService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
	adminUser string
	adminPass string
	adminHash string // bcrypt; preferred over adminPass when set
	logger    *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(jwtSecret string, tokenTTL time.Duration, adminUser, adminPass, adminHash string, logger *zap.Logger) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		adminUser: adminUser,
		adminPass: adminPass,
		adminHash: adminHash,
		logger:    logger,
	}
}

// JWTClaims are the claims carried by access tokens.
type JWTClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Login checks the operator credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	_, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if !s.credentialsValid(req.Username, req.Password) {
		s.logger.Warn("login: invalid credentials", zap.String("username", req.Username))
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}

	token, err := s.signToken(req.Username)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("login ok", zap.String("username", req.Username))
	return &domain.LoginResponse{
		Token: token,
		User: domain.UserInfo{
			Username: req.Username,
			Role:     "admin",
		},
	}, nil
}

func (s *AuthService) credentialsValid(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUser)) != 1 {
		return false
	}
	if s.adminHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.adminHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPass)) == 1
}

// ValidateAccessToken parses and verifies a bearer token. Invalid or
// expired tokens map to ErrForbidden, so the middleware can distinguish
// a bad token (403) from a missing one (401).
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrForbidden{Message: "Token inválido"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrForbidden{Message: "Token inválido"}
	}
	return claims, nil
}

func (s *AuthService) signToken(username string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Username: username,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
