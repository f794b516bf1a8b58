package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// Tokens travel as the next_token query parameter, so they use the URL-safe alphabet.
var tokenEncoding = base64.RawURLEncoding

// EncodeToken creates a base64 token from the sort key (creation time, id) of the last item on a page.
func EncodeToken(createdAt time.Time, id string) string {
	tokenStr := fmt.Sprintf("%s|%s", createdAt.Format(timeFormat), id)
	return tokenEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (time.Time, string, error) {
	decodedBytes, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}
	createdAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	return createdAt, parts[1], nil
}

// After reports whether the item keyed (createdAt, id) sorts after the cursor.
func After(createdAt time.Time, id string, cursorAt time.Time, cursorID string) bool {
	if createdAt.Equal(cursorAt) {
		return id > cursorID
	}
	return createdAt.After(cursorAt)
}
