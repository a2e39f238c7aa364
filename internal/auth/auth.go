package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aldeiamar/booking-api/internal/config"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

const TokenDuration = 24 * time.Hour

// AuthInput is embedded by every mutating operation's input so the caller
// token reaches Authorize. Session issuance happens elsewhere; this
// service only verifies.
type AuthInput struct {
	Cookie        string `header:"Cookie" doc:"Session cookie carrying auth_token"`
	Authorization string `header:"Authorization" doc:"Bearer token alternative to the cookie"`
}

type Handler struct {
	cfg *config.Config
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

// Authorize is the single capability check in front of every mutating
// operation. It returns the acting identity for audit notes, or the
// Unauthorized error the API boundary renders as access denied.
func (h *Handler) Authorize(ctx context.Context, input AuthInput) (string, error) {
	tokenString := bearerToken(input.Authorization)
	if tokenString == "" {
		tokenString = cookieToken(input.Cookie)
	}
	if tokenString == "" {
		return "", huma.Error401Unauthorized("Unauthorized")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", huma.Error401Unauthorized("Unauthorized")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", huma.Error401Unauthorized("Unauthorized")
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", huma.Error401Unauthorized("Unauthorized")
	}
	return subject, nil
}

// GenerateToken mints a session token for the given identity. The session
// service is the production issuer; this exists for tooling and tests.
func (h *Handler) GenerateToken(subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func cookieToken(header string) string {
	request := http.Request{Header: http.Header{"Cookie": []string{header}}}
	cookie, err := request.Cookie("auth_token")
	if err != nil {
		return ""
	}
	return cookie.Value
}
