package fetcher

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements whose content never reaches the visible text.
var skipElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"svg": true, "template": true, "head": true,
}

// Elements that start and end a line, roughly as a browser lays them out.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tbody": true, "tfoot": true,
	"thead": true, "tr": true, "ul": true,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ParseContent fills in the title and text of content from its HTML.
func ParseContent(content *Content) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTML))
	if err != nil {
		return err
	}

	if content.Title == "" {
		content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	content.Text = ExtractText(doc)
	return nil
}

// TextFromHTML returns the visible text of an HTML document.
func TextFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	return ExtractText(doc), nil
}

// ExtractText renders the document body as plain text. Block elements
// become line boundaries and whitespace inside a line is collapsed, so a
// heading and the paragraph under it end up on adjacent lines.
func ExtractText(doc *goquery.Document) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	writeText(&b, root)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func writeText(b *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			b.WriteString(whitespaceRun.ReplaceAllString(c.Text(), " "))
		case skipElements[name]:
		case blockElements[name]:
			b.WriteByte('\n')
			writeText(b, c)
			b.WriteByte('\n')
		case name == "td" || name == "th":
			writeText(b, c)
			b.WriteByte(' ')
		default:
			writeText(b, c)
		}
	})
}
