package render

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlHint = regexp.MustCompile(`(?i)<(html|body|p|div|h[1-6]|ul|ol|li|table|br)[\s/>]`)

// PlainText strips markup from HTML response content. Anything that does not
// look like HTML is returned unchanged.
func PlainText(content string) string {
	if !htmlHint.MatchString(content) {
		return content
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	doc.Find("script, style, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
