package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"caixapos/internal/apierror"
)

const claimsKey = "auth_claims"

// Role names as stored on users.
const (
	RoleAtendente     = "atendente"
	RoleGerente       = "gerente"
	RoleAdministrador = "administrador"
)

// AuthClaims is what the handlers see of the authenticated user.
type AuthClaims struct {
	UserID   uuid.UUID
	Username string
	Role     string
	StoreID  uuid.UUID
}

// Auth validates the bearer token and loads AuthClaims into the context.
// The token is also accepted as a "token" query parameter because browser
// websocket clients cannot set headers.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abortUnauthorized(c)
			return
		}

		mapClaims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, mapClaims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c)
			return
		}
		// Refresh tokens only open the refresh endpoint, never the API.
		if kind, _ := mapClaims["kind"].(string); kind == "refresh" {
			abortUnauthorized(c)
			return
		}

		sub, _ := mapClaims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		storeRaw, _ := mapClaims["store_id"].(string)
		storeID, err := uuid.Parse(storeRaw)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		username, _ := mapClaims["username"].(string)
		role, _ := mapClaims["role"].(string)
		c.Set(claimsKey, &AuthClaims{
			UserID:   userID,
			Username: username,
			Role:     role,
			StoreID:  storeID,
		})
		c.Next()
	}
}

// RequireRole gates an endpoint to the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Acesso negado"))
	}
}

// ClaimsFrom returns the claims loaded by Auth.
func ClaimsFrom(c *gin.Context) (*AuthClaims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*AuthClaims)
	return claims, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Não autenticado"))
}
