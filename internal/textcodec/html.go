package textcodec

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML returns the visible text of an HTML-formatted message.
// Used when a reply written for parse_mode=HTML has to go out as plain text.
func StripHTML(s string) (string, error) {
	if !strings.ContainsAny(s, "<&") {
		return s, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", err
	}
	return doc.Find("body").Text(), nil
}
