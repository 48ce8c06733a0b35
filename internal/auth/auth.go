package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtIssuer   = "gymflow-api"
	jwtAudience = "gymflow-storefront"

	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrEmptyJWTSecret   = errors.New("jwt secret cannot be empty")
)

type JWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func CheckPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

// Tokens is an issued access/refresh pair. ExpiresIn is the access token
// lifetime in seconds.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenIssuer signs and verifies HS256 tokens with a single secret.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptyJWTSecret
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  AccessTokenTTL,
		refreshTTL: RefreshTokenTTL,
		now:        time.Now,
	}, nil
}

// WithAccessTTL overrides the access token lifetime.
func (i *TokenIssuer) WithAccessTTL(ttl time.Duration) *TokenIssuer {
	i.accessTTL = ttl
	return i
}

func (i *TokenIssuer) generate(userID, email, role, tokenType string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := &JWTClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   userID,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *TokenIssuer) Issue(userID, email, role string) (Tokens, error) {
	access, err := i.generate(userID, email, role, tokenTypeAccess, i.accessTTL)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := i.generate(userID, email, role, tokenTypeRefresh, i.refreshTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(i.accessTTL / time.Second),
	}, nil
}

func (i *TokenIssuer) Validate(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return i.secret, nil
		},
		jwt.WithIssuer(jwtIssuer),
		jwt.WithAudience(jwtAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAccess accepts only access tokens.
func (i *TokenIssuer) ValidateAccess(tokenString string) (*JWTClaims, error) {
	claims, err := i.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new pair. The caller re-reads the
// user so that role changes take effect.
func (i *TokenIssuer) Refresh(refreshToken string) (*JWTClaims, error) {
	claims, err := i.Validate(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}
