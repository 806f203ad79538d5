package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/devmatch/pkg/models"
)

// Verification failures are distinct so the middleware can report an expired
// token differently from a malformed or forged one.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// HashPassword produces a one-way bcrypt hash of the raw credential.
func HashPassword(raw string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether raw matches the stored hash.
func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// Tokens issues and verifies the signed credentials binding a subject id to
// its role and account kind.
type Tokens struct {
	secret   string
	duration time.Duration
}

func NewTokens(secret string, duration time.Duration) *Tokens {
	return &Tokens{secret: secret, duration: duration}
}

// Claims is the verified content of a token.
type Claims struct {
	SubjectID int64
	Role      models.Role
	Kind      models.Kind
}

// Issue signs a time-bounded token for the subject.
func (t *Tokens) Issue(subjectID int64, role models.Role, kind models.Kind) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", subjectID),
		"role": string(role),
		"kind": string(kind),
		"exp":  time.Now().Add(t.duration).Unix(),
	})
	signed, err := token.SignedString([]byte(t.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (t *Tokens) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(t.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrTokenInvalid
	}
	var id int64
	if _, err := fmt.Sscanf(sub, "%d", &id); err != nil || id <= 0 {
		return nil, ErrTokenInvalid
	}

	role, _ := claims["role"].(string)
	kind, _ := claims["kind"].(string)
	switch models.Role(role) {
	case models.RoleDeveloper, models.RoleEmployer, models.RoleAdmin:
	default:
		return nil, ErrTokenInvalid
	}
	switch models.Kind(kind) {
	case models.KindDeveloper, models.KindEmployer:
	default:
		return nil, ErrTokenInvalid
	}

	return &Claims{SubjectID: id, Role: models.Role(role), Kind: models.Kind(kind)}, nil
}
