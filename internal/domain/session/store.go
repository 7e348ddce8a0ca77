package session

import "context"

// CredentialStore persists the single serialized session slot.
// This interface is defined in the domain to avoid circular imports.
// Implementations: file (default), sqlite (multi-profile hosts), in-memory (test).
type CredentialStore interface {
	// Load deserializes the stored session. It returns (nil, nil) when the
	// slot is empty or its contents are malformed: a corrupt slot is always
	// treated as "no session", never as a failure.
	Load(ctx context.Context) (*Session, error)

	// Save serializes and writes the session. No validation of token shape.
	Save(ctx context.Context, s *Session) error

	// Clear removes the slot. Idempotent: clearing an empty slot is a no-op.
	Clear(ctx context.Context) error
}

// AuthHeaderSetter mutates the HTTP facade's default Authorization header.
// Updates must take effect before the next request is dispatched.
type AuthHeaderSetter interface {
	SetDefaultAuthorization(token string)
	ClearDefaultAuthorization()
}

// Navigator is the surface the embedding UI supplies so the manager can move
// the user between the authenticated area and the public login surface.
type Navigator interface {
	ToAuthenticated()
	ToLogin()
}

// AlertSink receives the user-visible message published on forced logout.
type AlertSink interface {
	Publish(kind, message string)
}

// NopNavigator is a Navigator that does nothing, for embedders without a
// navigation surface (scripted CLI use).
type NopNavigator struct{}

func (NopNavigator) ToAuthenticated() {}
func (NopNavigator) ToLogin()         {}

// NopAlertSink drops all alerts.
type NopAlertSink struct{}

func (NopAlertSink) Publish(kind, message string) {}
