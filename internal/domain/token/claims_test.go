package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signedToken builds an HS256-signed token for tests. The signature key is
// irrelevant: Decode never verifies signatures.
func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestDecode(t *testing.T) {
	exp := time.Now().Add(1 * time.Hour).Truncate(time.Second)

	tests := []struct {
		name    string
		raw     string
		wantExp time.Time
		wantErr bool
	}{
		{
			name:    "valid token with exp",
			raw:     "", // filled below
			wantExp: exp,
		},
		{
			name:    "not a jwt",
			raw:     "not-a-jwt",
			wantErr: true,
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "missing exp claim",
			raw:     "missing-exp", // sentinel, replaced below
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			switch tt.name {
			case "valid token with exp":
				raw = signedToken(t, jwt.MapClaims{"exp": exp.Unix(), "sub": "admin-1"})
			case "missing exp claim":
				raw = signedToken(t, jwt.MapClaims{"sub": "admin-1"})
			}

			claims, err := Decode(raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode(%q) error = nil, want error", raw)
				}
				if !errors.Is(err, ErrMalformedToken) {
					t.Errorf("Decode(%q) error = %v, want ErrMalformedToken", raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !claims.ExpiresAt.Equal(tt.wantExp) {
				t.Errorf("Decode() ExpiresAt = %v, want %v", claims.ExpiresAt, tt.wantExp)
			}
		})
	}
}

func TestDecodeNeverVerifiesSignature(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute)
	raw := signedToken(t, jwt.MapClaims{"exp": exp.Unix()})

	// Corrupt the signature segment only. Decode must still succeed.
	corrupted := raw[:len(raw)-4] + "AAAA"
	if _, err := Decode(corrupted); err != nil {
		t.Fatalf("Decode() with corrupted signature error = %v, want nil", err)
	}
}
