package secjwt

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/status"
)

const (
	scopeClaim = "scope"

	// expiryFailure is contained in the validation error of the expired token.
	expiryFailure = `"exp" not satisfied`
)

// Params represents various options for HS256 JWT tokens.
type Params struct {
	// Secret - HMAC key.
	Secret []byte

	// Issuer - expected "iss" claim, empty means any.
	Issuer string

	// Audience - expected "aud" claim, empty means any.
	Audience string
}

// Validator validates HS256 JWT tokens.
//
// Remarks:
//   - Optional "scope" claim restricts the token to the listed "<METHOD> <path-prefix>"
//     entries, "*" matches any method.
//
// References:
//   - https://github.com/lestrrat-go/jwx
type Validator struct {
	params Params
}

// NewValidator is an initialization of Validator.
func NewValidator(params Params) (*Validator, error) {
	if len(params.Secret) == 0 {
		return nil, fmt.Errorf("jwt-validator: empty secret: %w", status.StatusInvalidArg)
	}

	return &Validator{params: params}, nil
}

// Validate returns the "sub" claim of the valid token.
func (v *Validator) Validate(method bdcore.Method, uri, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("jwt-validator: missed token: %w", status.StatusUnauthorized)
	}

	opts := []jwt.ParseOption{
		jwt.WithValidate(true),
		jwt.WithKey(jwa.HS256, v.params.Secret),
	}
	if v.params.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.params.Issuer))
	}
	if v.params.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.params.Audience))
	}

	tkn, err := jwt.Parse([]byte(token), opts...)
	if err != nil {
		if strings.Contains(err.Error(), expiryFailure) {
			return "", fmt.Errorf("jwt-validator: %v: %w", err, status.StatusTokenExpired)
		}

		return "", fmt.Errorf("jwt-validator: %v: %w", err, status.StatusUnauthorized)
	}

	if raw, ok := tkn.Get(scopeClaim); ok {
		if !scopeAllows(raw, method, uri) {
			return "", fmt.Errorf("jwt-validator: out of scope: method=%s uri=%s: %w",
				method, uri, status.StatusUnauthorized)
		}
	}

	return tkn.Subject(), nil
}

// Issuer issues HS256 JWT tokens.
type Issuer struct {
	params Params
}

// NewIssuer is an initialization of Issuer.
func NewIssuer(params Params) (*Issuer, error) {
	if len(params.Secret) == 0 {
		return nil, fmt.Errorf("jwt-issuer: empty secret: %w", status.StatusInvalidArg)
	}

	return &Issuer{params: params}, nil
}

// Issue returns the signed token for the subject.
//
// Parameters:
//   - subject - "sub" claim.
//   - ttl - token lifetime.
//   - scopes - optional "<METHOD> <path-prefix>" entries.
func (i *Issuer) Issue(subject string, ttl time.Duration, scopes ...string) (string, error) {
	now := time.Now()

	builder := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(ttl))

	if i.params.Issuer != "" {
		builder.Issuer(i.params.Issuer)
	}
	if i.params.Audience != "" {
		builder.Audience([]string{i.params.Audience})
	}
	if len(scopes) > 0 {
		builder.Claim(scopeClaim, scopes)
	}

	tkn, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("jwt-issuer: failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tkn, jwt.WithKey(jwa.HS256, i.params.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt-issuer: failed to sign token: %w", err)
	}

	return string(signed), nil
}

func scopeAllows(raw interface{}, method bdcore.Method, uri string) bool {
	var scopes []string

	switch v := raw.(type) {
	case string:
		scopes = []string{v}
	case []string:
		scopes = v
	case []interface{}:
		for _, s := range v {
			if str, ok := s.(string); ok {
				scopes = append(scopes, str)
			}
		}
	}

	for _, scope := range scopes {
		m, prefix, ok := strings.Cut(strings.TrimSpace(scope), " ")
		if !ok {
			continue
		}

		if (m == "*" || strings.EqualFold(m, string(method))) &&
			strings.HasPrefix(strings.ToLower(uri), strings.ToLower(strings.TrimSpace(prefix))) {
			return true
		}
	}

	return false
}
