package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/leetnote-go-api/internal/utils"
)

// UserResolver maps the identity carried by a token onto a local user id.
type UserResolver func(ctx context.Context, subject, email string) (uint, error)

// JWTProtected returns a middleware that validates HMAC bearer tokens and
// binds the resolved local user id to the request.
func JWTProtected(secret string, resolve UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		subject, _ := claims.GetSubject()
		subject = strings.TrimSpace(subject)
		email := stringClaim(claims, "email")
		if subject == "" || email == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		userID, err := resolve(c.UserContext(), subject, email)
		if err != nil || userID == 0 {
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve user")
		}

		c.Locals("user_id", userID)
		c.Locals("user_email", email)

		return c.Next()
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	value, ok := claims[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
