package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CashierClaims are the claims issued to back-office cashiers by the cooperative's identity
// provider. Subject is the cashier id that ends up on ledger entries and audit records.
type CashierClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// AuthMiddleware validates HS256 bearer tokens and puts the cashier id on the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	key := []byte(jwtSecret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Warn("Missing or malformed Authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be Bearer {token}"})
			return
		}

		claims := &CashierClaims{}
		_, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errUnexpectedSigningMethod
			}
			return key, nil
		})
		if err != nil {
			logger.Warn("Rejected token", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": tokenErrorMessage(err)})
			return
		}
		if claims.Subject == "" {
			logger.Warn("Token has no subject")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		attrs := []any{slog.String("user_id", claims.Subject)}
		if claims.Name != "" {
			attrs = append(attrs, slog.String("cashier", claims.Name))
		}
		ctx := WithUserID(c.Request.Context(), claims.Subject)
		ctx = WithLogger(ctx, logger.With(attrs...))
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(userIDKey), claims.Subject)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "Token not valid yet"
	default:
		return "Invalid token"
	}
}
