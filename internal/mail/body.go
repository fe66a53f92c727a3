package mail

import (
	"encoding/base64"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	gmail "google.golang.org/api/gmail/v1"
)

// ExtractBody pulls a readable body out of a Gmail message payload.
// text/plain parts win; text/html parts are converted to markdown.
func ExtractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if plain := findPart(payload, "text/plain"); plain != "" {
		return plain
	}
	if html := findPart(payload, "text/html"); html != "" {
		if md, err := htmltomarkdown.ConvertString(html); err == nil {
			return md
		}
		return html
	}

	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}
	return ""
}

// findPart walks the MIME tree depth-first for the first part of the
// given type with a non-empty body.
func findPart(part *gmail.MessagePart, mimeType string) string {
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, p := range part.Parts {
		if body := findPart(p, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// decodeBody handles both base64url (the documented encoding) and plain
// base64, which some senders produce anyway.
func decodeBody(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.StdEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}
