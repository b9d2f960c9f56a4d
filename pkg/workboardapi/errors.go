package workboardapi

import (
	"fmt"
	"strings"
)

// Error types in this file are safe to surface to MCP clients. Messages must
// never contain the bearer token or raw backend payloads.

// NotFoundError indicates a resource that does not exist or is not visible
// to the current token. Long identifiers are truncated before rendering.
type NotFoundError struct {
	Resource   string
	Identifier string
}

func (e *NotFoundError) Error() string {
	id := e.Identifier
	if len(id) > 20 {
		id = id[:20] + "..."
	}
	return fmt.Sprintf("%s not found or not accessible: %s", e.Resource, id)
}

// PermissionDeniedError indicates a 401/403 from the API. It names the
// missing scope, never the credential.
type PermissionDeniedError struct {
	RequiredScope string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("Permission denied. Required scope: %s", e.RequiredScope)
}

// RateLimitError indicates a 429 from the API. RetryAfter is a hint in
// seconds; zero means the API did not provide one.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	msg := "Rate limit exceeded."
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" Retry after %d seconds.", e.RetryAfter)
	}
	return msg
}

// APIError is any other non-success response or transport failure. The
// message is sanitized by the client before construction.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("WorkBoard API error %d: %s", e.Code, e.Message)
}

// scrub replaces every occurrence of the token in msg with "***".
func scrub(msg, token string) string {
	if token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, token, "***")
}
