// Package sync polls the mailbox in the background and runs newly
// seen messages through the triage pipeline.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/kannann1/mail-response-ai/internal/mailbox"
	"github.com/kannann1/mail-response-ai/internal/triage"
)

// SyncState represents the current state of the polling loop.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the current state of the poller.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// Result is emitted on the results channel after each poll cycle.
type Result struct {
	Analyses  []triage.Analysis
	Error     error
	AuthError *AuthError
}

// AuthError signals that mailbox credentials were rejected and the
// account needs reconfiguring.
type AuthError struct {
	Message string
}

// fetchTimeout is the maximum time allowed for a single poll cycle.
const fetchTimeout = 60 * time.Second

// Poller polls the mailbox on an interval and triages unseen messages.
type Poller struct {
	mailbox  *mailbox.Mailbox
	triager  *triage.Service
	interval time.Duration
	limit    int

	seen      map[uint32]bool
	status    SyncStatus
	resultCh  chan Result
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a poller over a mailbox and triage service.
func New(
	mb *mailbox.Mailbox,
	triager *triage.Service,
	interval time.Duration,
	limit int,
) *Poller {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	if limit <= 0 {
		limit = 50
	}
	return &Poller{
		mailbox:   mb,
		triager:   triager,
		interval:  interval,
		limit:     limit,
		seen:      make(map[uint32]bool),
		resultCh:  make(chan Result, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Results returns the channel poll results are delivered on.
func (p *Poller) Results() <-chan Result {
	return p.resultCh
}

// Start launches the polling goroutine. Calling Start on a running
// poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll cycle.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// loop runs the polling cycle until stopped.
func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial poll immediately.
	p.pollOnce()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.pollOnce()
		case <-p.triggerCh:
			p.pollOnce()
		}
	}
}

// pollOnce fetches unread messages, triages the ones not seen before,
// and sends a Result on the result channel.
func (p *Poller) pollOnce() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	messages, err := p.mailbox.Unread(ctx, p.limit)
	if err != nil {
		p.setStatus(SyncError, err)

		if mailbox.IsAuthError(err) {
			p.sendResult(Result{
				Error: err,
				AuthError: &AuthError{
					Message: "mailbox authentication failed; reconfigure the account",
				},
			})
			return
		}

		p.sendResult(Result{Error: err})
		return
	}

	var analyses []triage.Analysis
	for _, raw := range messages {
		if p.markSeen(raw.UID) {
			continue
		}

		analysis, err := p.triager.Process(ctx, raw)
		if err != nil {
			p.setStatus(SyncError, err)
			p.sendResult(Result{
				Analyses: analyses,
				Error:    fmt.Errorf("triaging message %d: %w", raw.UID, err),
			})
			return
		}
		analyses = append(analyses, analysis)
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(Result{Analyses: analyses})
}

// markSeen records a UID and reports whether it was already seen.
func (p *Poller) markSeen(uid uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen[uid] {
		return true
	}
	p.seen[uid] = true
	return false
}

// setStatus updates the poller status.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a Result on the result channel without blocking.
func (p *Poller) sendResult(msg Result) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}
