package middleware

import (
	"crypto/rsa"
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// CallerIDKey is the fiber locals key under which the authenticated caller's
// own record id is stored.
const CallerIDKey = "user_id"

// JWTVerifier validates bearer tokens issued by the external auth service.
// RS256 via a public key when one is configured, HS256 via a shared secret
// otherwise.
type JWTVerifier struct {
	secret []byte
	pub    *rsa.PublicKey
}

func NewJWTVerifier(secret, pubKeyPath string) (*JWTVerifier, error) {
	v := &JWTVerifier{}
	if pubKeyPath != "" {
		b, err := os.ReadFile(pubKeyPath)
		if err != nil {
			return nil, err
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
		if err != nil {
			return nil, err
		}
		v.pub = pub
		return v, nil
	}
	if secret == "" {
		return nil, errors.New("jwt: neither secret nor public key configured")
	}
	v.secret = []byte(secret)
	return v, nil
}

// VerifyToken returns the caller's user id claim.
func (v *JWTVerifier) VerifyToken(tokenStr string) (string, error) {
	t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			if v.pub == nil {
				return nil, errors.New("unexpected signing method")
			}
			return v.pub, nil
		case *jwt.SigningMethodHMAC:
			if v.secret == nil {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(v.secret), nil
		default:
			return nil, errors.New("unexpected signing method")
		}
	})
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	if v, ok := claims["user_id"].(string); ok && v != "" {
		return v, nil
	}
	if v, ok := claims["sub"].(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("user id not found in token")
}

func JWTAuth(verifier *JWTVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization header"})
		}
		uid, err := verifier.VerifyToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}
		c.Locals(CallerIDKey, uid)
		return c.Next()
	}
}
