package model

import "time"

// RawMessage is a transport-specific message as handed over by the
// mailbox: the full RFC 822 source plus the flags that only the
// transport knows about.
type RawMessage struct {
	// UID is the message identifier within the mailbox, when known.
	UID uint32

	// Source is the complete raw message (headers and body).
	Source []byte

	// Unread reports whether the message has not been seen yet.
	Unread bool
}

// EmailRecord is the canonical, transport-independent representation of
// one message. It is an immutable value produced by the normalizer;
// BodyText never contains raw markup and FromAddress is lower-cased
// when present.
type EmailRecord struct {
	// Subject is the message subject, empty if the header is missing.
	Subject string

	// FromDisplay is the sender's display name, empty if none.
	FromDisplay string

	// FromAddress is the sender's lower-cased address, empty if none.
	FromAddress string

	// ToList holds the recipient addresses.
	ToList []string

	// ReceivedAt is the parsed message date. Zero when the date header
	// was missing or unparseable; ReceivedRaw then holds whatever the
	// header contained.
	ReceivedAt  time.Time
	ReceivedRaw string

	// ThreadKey groups messages into one conversation. Empty when no
	// threading header was present.
	ThreadKey string

	// BodyText is the plain-text body with HTML stripped and
	// whitespace collapsed.
	BodyText string

	// HasAttachments reports whether any part was marked as an
	// attachment.
	HasAttachments bool

	// Unread mirrors the transport's unseen flag.
	Unread bool
}
