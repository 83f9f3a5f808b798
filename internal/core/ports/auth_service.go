package ports

import "context"

// AuthService exchanges the operator password for a signed API token.
type AuthService interface {
	IssueToken(ctx context.Context, password string) (string, error)
}
