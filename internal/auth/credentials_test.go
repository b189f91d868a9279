package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseCredentials(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		users   int
	}{
		{
			name:  "single entry",
			raw:   "sale01:1234",
			users: 1,
		},
		{
			name:  "multiple entries with spaces",
			raw:   "sale01:1234, sale02:1234, manager:admin",
			users: 3,
		},
		{
			name:    "empty table",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "malformed entry",
			raw:     "sale01",
			wantErr: true,
		},
		{
			name:    "missing secret",
			raw:     "sale01:",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := ParseCredentials(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, creds, tt.users)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	creds, err := ParseCredentials("sale01:1234,sale02:1234,manager:admin")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{name: "valid sale01", username: "sale01", password: "1234", want: true},
		{name: "valid sale02", username: "sale02", password: "1234", want: true},
		{name: "valid manager", username: "manager", password: "admin", want: true},
		{name: "wrong password", username: "sale01", password: "admin", want: false},
		{name: "unknown user", username: "sale99", password: "1234", want: false},
		{name: "empty password", username: "sale01", password: "", want: false},
		{name: "swapped pair", username: "1234", password: "sale01", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, creds.Authenticate(tt.username, tt.password))
		})
	}
}

func TestAuthenticateBcryptSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)

	creds := Credentials{"manager": string(hash)}
	require.True(t, creds.Authenticate("manager", "s3cret!"))
	require.False(t, creds.Authenticate("manager", "wrong"))
	// The hash itself is not a usable password
	require.False(t, creds.Authenticate("manager", string(hash)))
}
