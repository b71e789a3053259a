package textcodec

import "net/url"

// EncodeMessage escapes outbound text for use as a query value.
// Spaces become '+', unreserved ASCII passes through and every other byte is
// percent-encoded, which is what the Bot API's form decoder expects.
func EncodeMessage(text string) string {
	if text == "" {
		return ""
	}
	return url.QueryEscape(text)
}
