package otpauth

import (
	"context"
	"time"
)

// Profile is the minimal view of the user-profile collaborator consumed by the
// engine. Everything beyond the display names and the verified flag is opaque
// payload owned by the provider.
type Profile struct {
	Subject   string
	FirstName string
	LastName  string
	Verified  bool
}

// RegisterInput is the input for [Engine.Register]. Subject is the normalized
// phone number; the location fields are carried through to the provider
// unmodified.
type RegisterInput struct {
	Subject   string
	FirstName string
	LastName  string
	District  string
	State     string
	Country   string
}

// ProfileProvider is the interface callers must implement to integrate otpauth
// with their user-profile store. The engine is the only writer of the verified
// flag: it sets it true on a successful login verification and false on logout.
//
// Implementations must return [ErrProfileNotFound] / [ErrProfileExists] (or
// errors matching them under errors.Is) for the corresponding conditions.
type ProfileProvider interface {
	GetProfile(ctx context.Context, subject string) (Profile, error)
	CreateProfile(ctx context.Context, input RegisterInput) (Profile, error)
	SetVerified(ctx context.Context, subject string, verified bool) error
}

// Identity is returned by [Engine.Authorize] when a bearer token passes every
// guard check. It carries the claims a protected handler may rely on.
type Identity struct {
	Subject   string
	FirstName string
	LastName  string
	Verified  bool
	Nonce     string
	ExpiresAt time.Time
}

// normalizeSubject canonicalizes a phone-number identifier: an optional leading
// "+" followed by 8-15 digits. The stored form drops the "+".
func normalizeSubject(subject string) (string, error) {
	if subject == "" {
		return "", ErrSubjectInvalid
	}
	if subject[0] == '+' {
		subject = subject[1:]
	}
	if len(subject) < 8 || len(subject) > 15 {
		return "", ErrSubjectInvalid
	}
	for i := 0; i < len(subject); i++ {
		if subject[i] < '0' || subject[i] > '9' {
			return "", ErrSubjectInvalid
		}
	}
	return subject, nil
}
