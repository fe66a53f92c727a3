// Package mail reads and replies to Gmail threads.
package mail

import (
	"context"
	"fmt"
	"strings"
)

// Client abstracts the Gmail API for testability.
type Client interface {
	// ListThreads returns the most recent threads, newest first.
	// A non-empty query restricts results using Gmail search syntax.
	ListThreads(ctx context.Context, query string, max int64) ([]Thread, error)
	// GetThread fetches a single thread with full message bodies.
	GetThread(ctx context.Context, id string) (Thread, error)
	// SendReply sends a reply on an existing thread and returns the
	// new message ID.
	SendReply(ctx context.Context, in ReplyInput) (string, error)
	// CreateDraft stores a reply as a draft instead of sending it.
	CreateDraft(ctx context.Context, in ReplyInput) (string, error)
	// Profile returns the authenticated user's email address.
	Profile(ctx context.Context) (string, error)
}

// NormalizeReplySubject ensures an outgoing subject carries a single
// "Re:" prefix.
func NormalizeReplySubject(subject string) string {
	s := strings.TrimSpace(subject)
	if s == "" {
		return "Re: (no subject)"
	}
	if strings.HasPrefix(strings.ToLower(s), "re:") {
		return s
	}
	return "Re: " + s
}

// Validate checks that a reply has everything needed to be delivered.
func (in ReplyInput) Validate() error {
	if in.ThreadID == "" {
		return fmt.Errorf("reply: thread ID is required")
	}
	if in.To == "" {
		return fmt.Errorf("reply: recipient is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return fmt.Errorf("reply: body is empty")
	}
	return nil
}
