package auth

import "strings"

const bearerPrefix = "Bearer "

// BearerToken extracts the token from an `Authorization: Bearer <token>` header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}

	return token, true
}
