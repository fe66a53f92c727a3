package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// APIClient implements Client using the real Gmail API.
type APIClient struct {
	service *gmail.Service
}

// createGmailService creates a Gmail API service. Overridden in tests.
var createGmailService = func(ctx context.Context, opts ...option.ClientOption) (*gmail.Service, error) {
	return gmail.NewService(ctx, opts...)
}

// NewAPIClient creates a real Gmail API client using the given OAuth2 token source.
func NewAPIClient(ctx context.Context, tokenSource oauth2.TokenSource) (*APIClient, error) {
	srv, err := createGmailService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &APIClient{service: srv}, nil
}

func (c *APIClient) ListThreads(ctx context.Context, query string, max int64) ([]Thread, error) {
	call := c.service.Users.Threads.List("me").MaxResults(max).Context(ctx)
	if query != "" {
		call = call.Q(query)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("gmail threads.list: %w", err)
	}

	threads := make([]Thread, 0, len(resp.Threads))
	for _, t := range resp.Threads {
		thread, err := c.GetThread(ctx, t.Id)
		if err != nil {
			continue // skip individual thread errors
		}
		threads = append(threads, thread)
	}

	return threads, nil
}

func (c *APIClient) GetThread(ctx context.Context, id string) (Thread, error) {
	resp, err := c.service.Users.Threads.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return Thread{}, fmt.Errorf("gmail threads.get %s: %w", id, err)
	}

	thread := Thread{ID: resp.Id, Snippet: resp.Snippet}
	for _, m := range resp.Messages {
		if m.Payload == nil {
			continue
		}
		msg := Message{ID: m.Id, Snippet: m.Snippet}
		for _, h := range m.Payload.Headers {
			switch h.Name {
			case "Subject":
				msg.Subject = h.Value
			case "From":
				msg.From = h.Value
			case "To":
				msg.To = h.Value
			case "Date":
				msg.Date = h.Value
			case "Message-ID", "Message-Id":
				msg.MessageID = h.Value
			}
		}
		msg.Body = ExtractBody(m.Payload)
		thread.Messages = append(thread.Messages, msg)
	}

	return thread, nil
}

func (c *APIClient) SendReply(ctx context.Context, in ReplyInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	raw, err := c.buildRawReply(ctx, in)
	if err != nil {
		return "", err
	}

	sent, err := c.service.Users.Messages.Send("me", &gmail.Message{
		Raw:      raw,
		ThreadId: in.ThreadID,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail messages.send: %w", err)
	}
	return sent.Id, nil
}

func (c *APIClient) CreateDraft(ctx context.Context, in ReplyInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	raw, err := c.buildRawReply(ctx, in)
	if err != nil {
		return "", err
	}

	draft, err := c.service.Users.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: raw, ThreadId: in.ThreadID},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail drafts.create: %w", err)
	}
	return draft.Id, nil
}

func (c *APIClient) Profile(ctx context.Context) (string, error) {
	profile, err := c.service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail getProfile: %w", err)
	}
	return profile.EmailAddress, nil
}

// buildRawReply assembles the base64url-encoded RFC 5322 message for a
// reply, including the threading headers Gmail needs to keep the reply
// inside the original conversation.
func (c *APIClient) buildRawReply(ctx context.Context, in ReplyInput) (string, error) {
	from, err := c.Profile(ctx)
	if err != nil {
		return "", err
	}

	// The In-Reply-To/References headers come from the last message on
	// the thread that carries a Message-ID.
	var inReplyTo string
	if thread, err := c.GetThread(ctx, in.ThreadID); err == nil {
		for i := len(thread.Messages) - 1; i >= 0; i-- {
			if id := thread.Messages[i].MessageID; id != "" {
				inReplyTo = id
				break
			}
		}
	}

	return EncodeReply(from, inReplyTo, in), nil
}

// EncodeReply renders a plain-text reply as a base64url-encoded message.
func EncodeReply(from, inReplyTo string, in ReplyInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", in.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", NormalizeReplySubject(in.Subject))
	if inReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", inReplyTo)
		fmt.Fprintf(&b, "References: %s\r\n", inReplyTo)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(in.Body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
