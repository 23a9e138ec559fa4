package converter

import (
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var wsRX = regexp.MustCompile(`[ \t]*\n[ \t\n]*`)

// HTMLFile keeps headings, paragraphs and list items of <main>/<article>,
// or of the whole page when neither exists.
func HTMLFile(path string) (string, map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", nil, err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	var parts []string
	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	sel.Find("h1,h2,h3,h4,p,li").Each(func(_ int, s *goquery.Selection) {
		t := strings.Join(strings.Fields(s.Text()), " ")
		if t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		parts = append(parts, strings.TrimSpace(doc.Find("body").Text()))
	}
	text := cleanWhitespace(strings.Join(parts, "\n"))

	var meta map[string]any
	if title != "" {
		meta = map[string]any{"title": title}
	}
	return text, meta, nil
}

func cleanWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(wsRX.ReplaceAllString(s, "\n"))
}
