package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "storefront/internal/errors"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/models"
)

const (
	tokenIssuer     = "storefront-api"
	tokenTypeAccess = "access"

	// PrincipalKey holds the *models.User loaded for the request.
	PrincipalKey = "principal"
	// UserIDKey holds the principal's id as a string.
	UserIDKey = "userID"
)

// Claims represents the claims in the JWT. Role is what the user held when
// the token was issued; it is informational only.
type Claims struct {
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role"`
	TokenType string      `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager. The secret is kept in memory only.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs an access token for user.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify checks the signature, algorithm and expiry of a raw token and
// returns its claims. Failures are one of ErrMalformedToken, ErrTokenExpired
// or ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, apperrors.Wrap(apperrors.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperrors.Wrap(apperrors.ErrTokenExpired, err)
	default:
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}

	if claims.TokenType != tokenTypeAccess || claims.UserID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apperrors.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || scheme != "Bearer" || token == "" || strings.ContainsAny(token, " \t") {
		return "", apperrors.ErrMalformedToken
	}
	return token, nil
}

// PrincipalLoader resolves a user id to the live user record.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware verifies the bearer token, reloads the principal from the
// store and stores it in the context. The role claimed by the token is
// ignored; the stored role is authoritative. No handler runs on failure.
func AuthMiddleware(tokens *TokenManager, principals PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			rejectAuth(c, err)
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			rejectAuth(c, err)
			return
		}

		user, err := principals.LoadPrincipal(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				// Reported as an invalid token so callers cannot tell which accounts exist.
				logger.Get().Infow("token subject no longer exists", "user_id", claims.UserID)
				rejectAuth(c, apperrors.ErrInvalidToken)
				return
			}
			abortWithError(c, err)
			return
		}

		if user.IsSuspended {
			rejectAuth(c, apperrors.ErrAccountSuspended)
			return
		}

		c.Set(PrincipalKey, user)
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// GetPrincipal returns the principal stored by AuthMiddleware.
func GetPrincipal(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func rejectAuth(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	reason := apperrors.ErrInvalidToken.Code
	if errors.As(err, &appErr) {
		reason = appErr.Code
	}
	metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
	logger.Get().Debugw("authentication rejected",
		"reason", reason,
		"path", c.Request.URL.Path,
		"client_ip", c.ClientIP(),
	)
	abortWithError(c, err)
}
