// Package session manages the authenticated session lifecycle for the
// Quillpress admin client: credential persistence, expiry scheduling,
// auto-logout, and the invariant tying the persisted session to the HTTP
// facade's default Authorization header.
package session

import "encoding/json"

// Session is the active authenticated credential state.
type Session struct {
	// Token is the opaque bearer credential issued by the backend.
	Token string
	// Extra holds any additional fields the backend attached to the login
	// payload. They are persisted verbatim and never interpreted.
	Extra map[string]any
}

// Clone returns a deep copy so callers can't mutate the manager's state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := &Session{Token: s.Token}
	if s.Extra != nil {
		c.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// MarshalJSON flattens the session into a single object: the token plus the
// passthrough fields at the top level, matching the persisted layout
// {"token": "...", ...}.
func (s *Session) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(s.Extra)+1)
	for k, v := range s.Extra {
		obj[k] = v
	}
	obj["token"] = s.Token
	return json.Marshal(obj)
}

// UnmarshalJSON is the inverse of MarshalJSON: "token" is lifted out, every
// other field lands in Extra untouched.
func (s *Session) UnmarshalJSON(data []byte) error {
	obj := map[string]any{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if tok, ok := obj["token"].(string); ok {
		s.Token = tok
	}
	delete(obj, "token")
	if len(obj) > 0 {
		s.Extra = obj
	} else {
		s.Extra = nil
	}
	return nil
}

// Reason classifies why a session was invalidated.
type Reason int

const (
	// ReasonExpired covers timer-based expiry and 401 responses: from the
	// user's perspective both mean the session ran out.
	ReasonExpired Reason = iota
	// ReasonInvalidToken means the credential could not be decoded.
	ReasonInvalidToken
	// ReasonForbidden means the backend rejected an action with 403.
	ReasonForbidden
)

// String returns the stable machine-readable name of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonExpired:
		return "session_expired"
	case ReasonInvalidToken:
		return "invalid_token"
	case ReasonForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Message returns the user-facing alert text for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonExpired:
		return "Your session has expired. Please log in again."
	case ReasonInvalidToken:
		return "Invalid token. Please log in again."
	case ReasonForbidden:
		return "You are not authorized to perform this action."
	default:
		return "Your session has ended. Please log in again."
	}
}
