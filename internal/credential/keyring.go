// Package credential stores the mailbox password in the system
// keyring, with a file backend fallback.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName        = "mailtriage"
	mailboxPasswordKey = "mailbox-password"
)

// MailboxPassword returns the stored email account password. One
// password serves both IMAP and SMTP.
func MailboxPassword() (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(mailboxPasswordKey)
	if err != nil {
		return "", fmt.Errorf("getting mailbox password: %w", err)
	}

	return string(item.Data), nil
}

// SetMailboxPassword stores the email account password.
func SetMailboxPassword(password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  mailboxPasswordKey,
		Data: []byte(password),
	})
	if err != nil {
		return fmt.Errorf("storing mailbox password: %w", err)
	}

	return nil
}

// ClearMailboxPassword removes the stored email account password.
func ClearMailboxPassword() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(mailboxPasswordKey); err != nil {
		return fmt.Errorf("clearing mailbox password: %w", err)
	}

	return nil
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailtriage/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailtriage-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}
