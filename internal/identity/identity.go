// Package identity decodes the HR portal's bearer tokens into the caller's
// employee id and role.
package identity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

const DefaultRole = "employee"

// Identity is who is asking. An empty EmpID means anonymous.
type Identity struct {
	EmpID string
	Role  string
}

func Anonymous() Identity {
	return Identity{Role: DefaultRole}
}

func (i Identity) Authenticated() bool {
	return i.EmpID != ""
}

type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier accepts HS256 tokens signed with secret. An empty issuer skips
// the iss check.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Validate parses token. The empid claim may be a string or a number and the
// role claim defaults to employee.
func (v *Verifier) Validate(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Anonymous(), fmt.Errorf("empty token: %w", ErrInvalidToken)
	}
	if len(v.secret) == 0 {
		return Anonymous(), fmt.Errorf("no signing secret configured: %w", ErrInvalidToken)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Anonymous(), fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return Anonymous(), fmt.Errorf("unexpected issuer: %w", ErrInvalidToken)
	}

	empID := claimString(claims["empid"])
	if empID == "" {
		empID = claimString(claims["sub"])
	}
	if empID == "" {
		return Anonymous(), fmt.Errorf("token has no empid: %w", ErrInvalidToken)
	}

	role := strings.ToLower(claimString(claims["role"]))
	if role == "" {
		role = DefaultRole
	}
	return Identity{EmpID: empID, Role: role}, nil
}

// Issue signs a token for id. Used by tests and the CLI.
func (v *Verifier) Issue(id Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"empid": id.EmpID,
		"role":  id.Role,
		"iat":   time.Now().Unix(),
	}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func claimString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
