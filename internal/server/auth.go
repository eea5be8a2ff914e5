package server

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/gin-gonic/gin"
)

// Authentication schemes an endpoint may accept.
const (
	SchemeNone   = "none"
	SchemeBasic  = "basic"
	SchemeBearer = "bearer"
	SchemeAPIKey = "apikey"
)

// credentials is the request's credential material, extracted once and
// checked against the configured secrets by an ordered list of scheme
// predicates.
type credentials struct {
	authHeader string
	apiKey     string
}

func extractCredentials(c *gin.Context) credentials {
	return credentials{
		authHeader: strings.TrimSpace(c.GetHeader("Authorization")),
		apiKey:     strings.TrimSpace(c.GetHeader("X-API-Key")),
	}
}

// Authenticate gates an endpoint on the given schemes. Precedence: a
// present API key is checked first when the endpoint allows it, and a
// mismatch rejects immediately even if other valid credentials are
// attached. Header schemes follow, short-circuiting on the first match.
func (s *Server) Authenticate(schemes ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(schemes))
	for _, scheme := range schemes {
		allowed[strings.ToLower(scheme)] = true
	}

	return func(c *gin.Context) {
		creds := extractCredentials(c)

		if creds.authHeader == "" && creds.apiKey == "" {
			if allowed[SchemeNone] {
				c.Next()
				return
			}
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if creds.apiKey != "" && allowed[SchemeAPIKey] {
			if s.validAPIKey(creds.apiKey) {
				c.Next()
				return
			}
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if creds.authHeader != "" {
			if strings.HasPrefix(creds.authHeader, "Basic") && allowed[SchemeBasic] {
				if s.validBasic(creds.authHeader) {
					c.Next()
					return
				}
			}
			if strings.HasPrefix(creds.authHeader, "Bearer") && allowed[SchemeBearer] {
				if s.validBearer(creds.authHeader) {
					c.Next()
					return
				}
			}
		}

		AbortWithError(c, ErrUnauthorized)
	}
}

func (s *Server) validAPIKey(key string) bool {
	if s.cfg.APIKey == "" {
		return false
	}
	return constantTimeEqual(key, s.cfg.APIKey)
}

func (s *Server) validBasic(header string) bool {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	pair := strings.Split(string(decoded), ":")
	if len(pair) != 2 {
		return false
	}

	userOK := constantTimeEqual(pair[0], s.cfg.BasicUser)
	passOK := constantTimeEqual(pair[1], s.cfg.BasicPass)
	return userOK && passOK
}

func (s *Server) validBearer(header string) bool {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return false
	}
	if s.cfg.BearerToken == "" {
		return false
	}
	return constantTimeEqual(parts[1], s.cfg.BearerToken)
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
