package mailbox

import (
	"errors"
	"fmt"
)

// SMTPConfig holds the SMTP server settings for sending replies.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
}

// AuthError indicates that authentication has failed or expired for
// the mailbox account.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("mailbox auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an
// AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
