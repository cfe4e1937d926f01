package bdcore

import (
	"context"
	"fmt"

	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

// Method is a protocol-neutral request verb.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPut    Method = "PUT"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
)

// Listener handles requests for a single resource.
type Listener interface {
	// OnGet returns the resource representation.
	OnGet(ctx context.Context) (thcore.Content, error)

	// OnPut replaces the resource state.
	OnPut(ctx context.Context, content thcore.Content) error

	// OnPost processes content and returns the verb-specific result.
	OnPost(ctx context.Context, content thcore.Content) (thcore.Content, error)

	// OnDelete removes the resource.
	OnDelete(ctx context.Context) error

	// HasProtection returns true if the token should be validated before each verb.
	HasProtection() bool

	// Validate validates the token and returns the authenticated subject.
	Validate(method Method, uri, token string) (string, error)
}

// TokenValidator validates security tokens.
type TokenValidator interface {
	// Validate returns the token subject.
	//
	// Remarks:
	//   - Fails with status.StatusUnauthorized or status.StatusTokenExpired.
	Validate(method Method, uri, token string) (string, error)
}

// BaseListener implements Listener with every verb unsupported.
//
// Remarks:
//   - Embed it and override only the supported verbs.
//   - Protection is enabled when Validator is set.
type BaseListener struct {
	Validator TokenValidator
}

// OnGet isn't supported.
func (*BaseListener) OnGet(_ context.Context) (thcore.Content, error) {
	return thcore.Content{}, status.StatusNotSupported
}

// OnPut isn't supported.
func (*BaseListener) OnPut(_ context.Context, _ thcore.Content) error {
	return status.StatusNotSupported
}

// OnPost isn't supported.
func (*BaseListener) OnPost(_ context.Context, _ thcore.Content) (thcore.Content, error) {
	return thcore.Content{}, status.StatusNotSupported
}

// OnDelete isn't supported.
func (*BaseListener) OnDelete(_ context.Context) error {
	return status.StatusNotSupported
}

// HasProtection returns true if the validator is set.
func (l *BaseListener) HasProtection() bool {
	return l.Validator != nil
}

// Validate delegates validation to the validator.
func (l *BaseListener) Validate(method Method, uri, token string) (string, error) {
	if l.Validator == nil {
		return "", fmt.Errorf("listener: validator isn't set: %w", status.StatusUnauthorized)
	}

	return l.Validator.Validate(method, uri, token)
}

type subjectKey struct{}

// WithSubject returns a copy of ctx carrying the authenticated subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext returns the authenticated subject of the request.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey{}).(string)
	return subject, ok
}

type notificationKey struct{}

// WithNotification marks ctx as an observer notification rather than a client request.
func WithNotification(ctx context.Context) context.Context {
	return context.WithValue(ctx, notificationKey{}, true)
}

// IsNotification returns true if ctx belongs to an observer notification.
func IsNotification(ctx context.Context) bool {
	notification, _ := ctx.Value(notificationKey{}).(bool)
	return notification
}
