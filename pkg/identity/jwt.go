package identity

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWT-based caller extractor.
type JWTConfig struct {
	// PublicKeyPath is the path to the PEM-encoded RSA public key for RS256
	// verification. If empty, tokens are parsed but NOT verified (suitable
	// only behind a trusted proxy).
	PublicKeyPath string

	// Issuer is the expected token issuer (iss claim). If empty, issuer is
	// not validated.
	Issuer string

	// Audience is the expected token audience (aud claim). If empty,
	// audience is not validated.
	Audience string

	// GroupsClaim is the claim holding the caller's groups. Default "groups".
	GroupsClaim string

	// Logger for debugging. If nil, uses slog.Default().
	Logger *slog.Logger
}

// NewJWTMiddleware returns middleware that attaches a Caller extracted from
// a Bearer token. The subject claim becomes the user id. Requests with a
// missing or unparseable token pass through with no caller set; the
// authorization collaborator decides what an anonymous caller may do.
func NewJWTMiddleware(cfg JWTConfig) (func(http.Handler) http.Handler, error) {
	if cfg.GroupsClaim == "" {
		cfg.GroupsClaim = "groups"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var publicKey *rsa.PublicKey
	if cfg.PublicKeyPath != "" {
		key, err := loadRSAPublicKey(cfg.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		publicKey = key
		cfg.Logger.Info("jwt identity: using RS256 verification", "keyPath", cfg.PublicKeyPath)
	} else {
		cfg.Logger.Warn("jwt identity: no public key configured, tokens parsed without verification (trusted proxy mode)")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parseClaims(token, publicKey, cfg)
			if err != nil {
				cfg.Logger.Debug("jwt parse failed, continuing anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			caller := callerFromClaims(claims, cfg.GroupsClaim)
			if caller.UserID == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}, nil
}

func loadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JWT public key from %s: %w", path, err)
	}
	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block from %s", path)
	}
	parsedKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	rsaKey, ok := parsedKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not RSA (got %T)", parsedKey)
	}
	return rsaKey, nil
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// parseClaims parses and optionally verifies a JWT token.
func parseClaims(tokenString string, publicKey *rsa.PublicKey, cfg JWTConfig) (jwt.MapClaims, error) {
	parserOpts := []jwt.ParserOption{}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(cfg.Audience))
	}

	var token *jwt.Token
	var err error

	if publicKey != nil {
		token, err = jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return publicKey, nil
		}, parserOpts...)
	} else {
		// Trusted proxy mode: parse without verification.
		parser := jwt.NewParser(parserOpts...)
		token, _, err = parser.ParseUnverified(tokenString, jwt.MapClaims{})
	}

	if err != nil {
		return nil, fmt.Errorf("JWT parse error: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claims, nil
}

// callerFromClaims builds a Caller from standard claims: sub for the user
// id, name for the display name, and the configured groups claim.
func callerFromClaims(claims jwt.MapClaims, groupsClaim string) Caller {
	caller := Caller{}
	if sub, ok := claims["sub"].(string); ok {
		caller.UserID = sub
	}
	if name, ok := claims["name"].(string); ok {
		caller.Name = name
	}
	switch groups := claims[groupsClaim].(type) {
	case []interface{}:
		for _, g := range groups {
			if s, ok := g.(string); ok {
				caller.Groups = append(caller.Groups, s)
			}
		}
	case string:
		caller.Groups = splitGroups(groups)
	}
	return caller
}
