package mail

// Message is a single email message extracted from a thread.
type Message struct {
	ID        string
	MessageID string // RFC 5322 Message-ID header, used for reply threading
	Subject   string
	From      string
	To        string
	Date      string
	Snippet   string
	Body      string
}

// Thread is an ordered conversation, oldest message first.
type Thread struct {
	ID       string
	Snippet  string
	Messages []Message
}

// Latest returns the most recent message of the thread.
func (t Thread) Latest() Message {
	if len(t.Messages) == 0 {
		return Message{}
	}
	return t.Messages[len(t.Messages)-1]
}

// Subject returns the thread subject, taken from its latest message.
func (t Thread) Subject() string {
	return t.Latest().Subject
}

// ReplyInput describes an outgoing reply on an existing thread.
type ReplyInput struct {
	ThreadID string
	To       string
	Subject  string
	Body     string
}
