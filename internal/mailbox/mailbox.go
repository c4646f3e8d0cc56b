// Package mailbox provides IMAP retrieval and SMTP reply delivery for
// a single email account.
package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"

	"github.com/kannann1/mail-response-ai/internal/model"
)

// Mailbox combines IMAP retrieval with SMTP delivery for one account.
type Mailbox struct {
	imapClient *IMAPClient
	smtpConfig SMTPConfig
}

// New creates a mailbox from the mailbox configuration and the account
// password.
func New(cfg model.MailboxConfig, password string) *Mailbox {
	return &Mailbox{
		imapClient: NewIMAPClient(
			cfg.IMAPHost, cfg.IMAPPort,
			cfg.Username, password, cfg.UseTLS,
		),
		smtpConfig: SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.Username,
			Password: password,
			TLS:      cfg.UseTLS,
		},
	}
}

// Unread returns up to limit unseen messages in the inbox.
func (m *Mailbox) Unread(
	ctx context.Context, limit int,
) ([]model.RawMessage, error) {
	return m.imapClient.FetchUnread(ctx, limit)
}

// Recent returns up to limit messages received within the last given
// number of days.
func (m *Mailbox) Recent(
	ctx context.Context, days, limit int,
) ([]model.RawMessage, error) {
	return m.imapClient.FetchRecent(ctx, days, limit)
}

// Thread returns prior messages of the conversation identified by the
// thread key.
func (m *Mailbox) Thread(
	ctx context.Context, threadKey string, limit int,
) ([]model.RawMessage, error) {
	return m.imapClient.FetchThread(ctx, threadKey, limit)
}

// MarkRead sets the seen flag on a message.
func (m *Mailbox) MarkRead(ctx context.Context, uid uint32) error {
	return m.imapClient.SetFlags(
		ctx, uid, []imap.Flag{imap.FlagSeen}, true,
	)
}

// Archive moves a message out of the inbox.
func (m *Mailbox) Archive(ctx context.Context, uid uint32) error {
	return m.imapClient.MoveToArchive(ctx, uid)
}

// SendReply sends replyBody as a reply to the original email and marks
// the original as answered.
func (m *Mailbox) SendReply(
	ctx context.Context,
	email model.EmailRecord,
	uid uint32,
	replyBody string,
) error {
	to := email.FromAddress
	if to == "" {
		return fmt.Errorf("no sender address to reply to")
	}

	msg := buildReplyMessage(
		m.smtpConfig.Username, to,
		email.Subject, email.ThreadKey, replyBody,
	)

	addr := m.smtpConfig.Host + ":" + m.smtpConfig.Port

	var err error
	if m.smtpConfig.TLS {
		err = sendSMTPWithTLS(addr, m.smtpConfig, to, msg)
	} else {
		err = sendSMTPWithStartTLS(addr, m.smtpConfig, to, msg)
	}
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}

	return m.imapClient.SetFlags(
		ctx, uid, []imap.Flag{imap.FlagAnswered}, true,
	)
}

// buildReplyMessage composes the raw RFC 822 reply, threading it onto
// the original message when a thread key is known.
func buildReplyMessage(
	from, to, subject, threadKey, replyBody string,
) string {
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	if threadKey != "" {
		msg.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", threadKey))
		msg.WriteString(fmt.Sprintf("References: %s\r\n", threadKey))
	}
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(replyBody)

	return msg.String()
}

// sendSMTPWithTLS sends an email over an implicit TLS connection.
func sendSMTPWithTLS(
	addr string, cfg SMTPConfig, to, body string,
) error {
	tlsConfig := &tls.Config{ServerName: cfg.Host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendMailViaSMTPClient(client, cfg.Username, to, body)
}

// sendSMTPWithStartTLS sends an email using STARTTLS.
func sendSMTPWithStartTLS(
	addr string, cfg SMTPConfig, to, body string,
) error {
	conn, err := net.DialTimeout("tcp", addr, 30*time.Second)
	if err != nil {
		return fmt.Errorf("dial to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: cfg.Host}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendMailViaSMTPClient(client, cfg.Username, to, body)
}

// sendMailViaSMTPClient sends a message using an already-authenticated
// SMTP client.
func sendMailViaSMTPClient(
	client *smtp.Client, from, to, body string,
) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write([]byte(body)); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	return client.Quit()
}
