package auth

import (
	"crypto/subtle" // Constant-time compare for plain secrets
	"fmt"           // Error formatting
	"strings"       // Credential table parsing

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// Credentials is the fixed username to secret table loaded from process
// configuration. It is immutable at runtime and never persisted.
type Credentials map[string]string

// ParseCredentials parses the "user:secret,user:secret" form used by the
// AUTH_USERS configuration key. A secret may be a bcrypt hash.
func ParseCredentials(raw string) (Credentials, error) {
	creds := Credentials{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		user, secret, ok := strings.Cut(pair, ":")
		if !ok || user == "" || secret == "" {
			return nil, fmt.Errorf("auth: malformed credential entry %q", pair)
		}
		creds[user] = secret
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("auth: empty credential table")
	}
	return creds, nil
}

// Authenticate checks a username/password pair against the table. Secrets
// stored as bcrypt hashes are compared with bcrypt; plain secrets are
// compared in constant time. Unknown usernames always fail.
func (c Credentials) Authenticate(username, password string) bool {
	secret, ok := c[username]
	if !ok {
		return false
	}
	if strings.HasPrefix(secret, "$2a$") || strings.HasPrefix(secret, "$2b$") || strings.HasPrefix(secret, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}
