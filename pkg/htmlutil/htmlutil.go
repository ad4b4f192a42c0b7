package htmlutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// GetText concatenates every text node under `node` as-is.
func GetText(node *html.Node) string {
	var buffer strings.Builder
	walkText(node, func(text string) {
		buffer.WriteString(text)
	})
	return buffer.String()
}

// GetStrippedText trims each text node under `node` and concatenates the
// non-empty results without a separator, so "<a> Иванов </a>\n<br>И.И." becomes
// "ИвановИ.И.".
func GetStrippedText(node *html.Node) string {
	var buffer strings.Builder
	walkText(node, func(text string) {
		buffer.WriteString(strings.TrimSpace(text))
	})
	return buffer.String()
}

func walkText(node *html.Node, visit func(text string)) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		visit(node.Data)
		return
	}
	if node.Type == html.ElementNode && (node.DataAtom == atom.Script || node.DataAtom == atom.Style) {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walkText(child, visit)
	}
}

// TextNodes returns every text node of the document in document order,
// excluding the contents of <script> and <style>.
func TextNodes(doc *goquery.Document) []string {
	var out []string
	for _, root := range doc.Nodes {
		walkText(root, func(text string) {
			out = append(out, text)
		})
	}
	return out
}

// FirstHref returns the href of the first anchor with an href attribute
// under `sel`.
func FirstHref(sel *goquery.Selection) (string, bool) {
	return sel.Find("a[href]").First().Attr("href")
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// CollapseWhitespace replaces every run of whitespace with a single space and
// trims the result, non-printable characters are dropped.
func CollapseWhitespace(s string) string {
	s = removeNonPrintable(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = innerWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
