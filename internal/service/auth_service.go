package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

type profileRepository interface {
	FindByID(ctx context.Context, userID string) (*models.Profile, error)
	Roles(ctx context.Context, userID string) ([]models.Role, error)
}

// AuthConfig defines how access tokens from the identity provider are verified.
type AuthConfig struct {
	AccessTokenSecret string
	Issuer            string
}

// AuthService verifies bearer tokens and resolves the calling actor.
type AuthService struct {
	profiles profileRepository
	logger   *zap.Logger
	config   AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(profiles profileRepository, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{profiles: profiles, logger: logger, config: config}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, options...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || strings.TrimSpace(claims.UserID()) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ResolveActor loads the profile and roles of the token subject.
func (s *AuthService) ResolveActor(ctx context.Context, claims *models.JWTClaims) (*models.Actor, error) {
	userID := claims.UserID()
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	roles, err := s.profiles.Roles(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roles")
	}

	actor := &models.Actor{UserID: profile.ID, InstitutionID: profile.InstitutionID, Roles: roles}
	if profile.FullName != nil {
		actor.FullName = *profile.FullName
	}
	if actor.FullName == "" {
		actor.FullName = claims.Email
	}
	return actor, nil
}

// Authenticate validates tokenString and resolves the actor behind it.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.Actor, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	actor, err := s.ResolveActor(ctx, claims)
	if err != nil {
		s.logger.Debug("actor resolution failed", zap.String("user_id", claims.UserID()), zap.Error(err))
		return nil, err
	}
	return actor, nil
}
