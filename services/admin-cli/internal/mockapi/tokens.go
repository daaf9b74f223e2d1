package mockapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenClaims данные пользователя в JWT токене
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет пары токенов HS256
type TokenManager struct {
	accessSecretKey  string
	refreshSecretKey string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	now              func() time.Time
}

// NewTokenManager создает менеджер токенов
func NewTokenManager(accessSecretKey, refreshSecretKey string, accessTokenTTL, refreshTokenTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecretKey:  accessSecretKey,
		refreshSecretKey: refreshSecretKey,
		accessTokenTTL:   accessTokenTTL,
		refreshTokenTTL:  refreshTokenTTL,
		now:              time.Now,
	}
}

// GeneratePair генерирует пару access и refresh токенов
func (m *TokenManager) GeneratePair(user *userRecord) (string, string, error) {
	accessToken, err := m.GenerateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := m.generate(user, tokenTypeRefresh, m.refreshTokenTTL, m.refreshSecretKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// GenerateAccessToken генерирует access токен
func (m *TokenManager) GenerateAccessToken(user *userRecord) (string, error) {
	return m.generate(user, tokenTypeAccess, m.accessTokenTTL, m.accessSecretKey)
}

func (m *TokenManager) generate(user *userRecord, tokenType string, ttl time.Duration, secret string) (string, error) {
	now := m.now().UTC()
	claims := &TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti делает токены одного пользователя, выпущенные в одну секунду, различимыми
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken проверяет access токен
func (m *TokenManager) ValidateAccessToken(token string) (*TokenClaims, error) {
	return m.validate(token, m.accessSecretKey, tokenTypeAccess)
}

// ValidateRefreshToken проверяет refresh токен
func (m *TokenManager) ValidateRefreshToken(token string) (*TokenClaims, error) {
	return m.validate(token, m.refreshSecretKey, tokenTypeRefresh)
}

func (m *TokenManager) validate(token, secretKey, tokenType string) (*TokenClaims, error) {
	parsedToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := parsedToken.Claims.(*TokenClaims)
	if !ok || !parsedToken.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("invalid token type: expected '%s', got '%s'", tokenType, claims.TokenType)
	}
	return claims, nil
}
