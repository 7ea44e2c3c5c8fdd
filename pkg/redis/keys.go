package redis

import "strings"

// All keys live under one prefix so a shared redis can be flushed per app.
const keyPrefix = "js"

const (
	sessionSegment     = "session"
	idempotencySegment = "idempotency"
	throttleSegment    = "throttle"
)

// SessionKey holds the refresh token bound to one access token id.
func (c *Client) SessionKey(accessID string) string {
	return joinKey(sessionSegment, accessID)
}

// IdempotencyKey scopes a client-supplied Idempotency-Key, e.g. ("checkout", employeeID+":"+key).
func (c *Client) IdempotencyKey(scope, id string) string {
	return joinKey(idempotencySegment, scope, id)
}

// ThrottleKey holds a fixed-window counter.
func (c *Client) ThrottleKey(scope string) string {
	return joinKey(throttleSegment, scope)
}

func joinKey(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyPrefix)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}
