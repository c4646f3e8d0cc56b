package mailbox

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/kannann1/mail-response-ai/internal/model"
)

// IMAPClient wraps go-imap v2 for connecting to and querying IMAP
// servers. Each operation opens its own short-lived connection.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	tls      bool
}

// NewIMAPClient creates a new IMAP client configuration.
func NewIMAPClient(
	host, port, username, password string, tls bool,
) *IMAPClient {
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
	}
}

// Connect establishes a connection to the IMAP server, authenticates,
// and returns the connected client. The caller is responsible for
// calling Logout on the returned client.
func (c *IMAPClient) Connect(
	_ context.Context,
) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &AuthError{
			Message: fmt.Sprintf(
				"authentication failed for %s: %v", c.username, err,
			),
		}
	}

	return client, nil
}

// FetchUnread retrieves up to limit unseen messages from INBOX as raw
// messages.
func (c *IMAPClient) FetchUnread(
	ctx context.Context, limit int,
) ([]model.RawMessage, error) {
	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	return c.search(ctx, criteria, limit)
}

// FetchRecent retrieves up to limit messages received within the last
// given number of days.
func (c *IMAPClient) FetchRecent(
	ctx context.Context, days, limit int,
) ([]model.RawMessage, error) {
	criteria := &imap.SearchCriteria{
		Since: time.Now().AddDate(0, 0, -days),
	}
	return c.search(ctx, criteria, limit)
}

// FetchThread retrieves prior messages of a conversation by matching
// the thread key against threading headers.
func (c *IMAPClient) FetchThread(
	ctx context.Context, threadKey string, limit int,
) ([]model.RawMessage, error) {
	if threadKey == "" {
		return nil, nil
	}

	criteria := &imap.SearchCriteria{
		Or: [][2]imap.SearchCriteria{
			{
				{Header: []imap.SearchCriteriaHeaderField{
					{Key: "References", Value: threadKey},
				}},
				{Header: []imap.SearchCriteriaHeaderField{
					{Key: "Message-Id", Value: threadKey},
				}},
			},
		},
	}
	return c.search(ctx, criteria, limit)
}

// search connects, selects INBOX, runs the criteria, and fetches the
// matching messages' full raw source.
func (c *IMAPClient) search(
	ctx context.Context,
	criteria *imap.SearchCriteria,
	limit int,
) ([]model.RawMessage, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Take the most recent when over the limit.
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	uidSet := imap.UIDSetNum(uids...)

	// An unqualified body section yields the entire raw message.
	bodySection := &imap.FetchItemBodySection{Peek: true}

	fetchOpts := &imap.FetchOptions{
		Flags:       true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var messages []model.RawMessage
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		raw := buf.FindBodySection(bodySection)
		if raw == nil {
			continue
		}

		unread := true
		for _, flag := range buf.Flags {
			if flag == imap.FlagSeen {
				unread = false
				break
			}
		}

		messages = append(messages, model.RawMessage{
			UID:    uint32(buf.UID),
			Source: raw,
			Unread: unread,
		})
	}

	if err := fetchCmd.Close(); err != nil {
		return messages, fmt.Errorf("fetching messages: %w", err)
	}

	return messages, nil
}

// SetFlags connects to IMAP and modifies flags on a message.
// If add is true, the flags are added; otherwise they are removed.
func (c *IMAPClient) SetFlags(
	ctx context.Context,
	uid uint32,
	flags []imap.Flag,
	add bool,
) error {
	client, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return fmt.Errorf("selecting INBOX: %w", err)
	}

	uidSet := imap.UIDSetNum(imap.UID(uid))

	op := imap.StoreFlagsAdd
	if !add {
		op = imap.StoreFlagsDel
	}

	storeCmd := client.Store(uidSet, &imap.StoreFlags{
		Op:     op,
		Silent: true,
		Flags:  flags,
	}, nil)

	return storeCmd.Close()
}

// MoveToArchive connects to IMAP and moves the message to an archive
// mailbox. It tries common archive folder names, falling back to
// marking the message as deleted.
func (c *IMAPClient) MoveToArchive(
	ctx context.Context, uid uint32,
) error {
	client, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return fmt.Errorf("selecting INBOX: %w", err)
	}

	uidSet := imap.UIDSetNum(imap.UID(uid))

	archiveFolders := []string{
		"Archive", "[Gmail]/All Mail", "Archives", "INBOX.Archive",
	}

	for _, folder := range archiveFolders {
		moveCmd := client.Move(uidSet, folder)
		if _, err := moveCmd.Wait(); err == nil {
			return nil
		}
	}

	// Fallback: mark as deleted.
	storeCmd := client.Store(uidSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagDeleted},
	}, nil)

	return storeCmd.Close()
}
