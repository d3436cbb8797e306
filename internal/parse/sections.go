package parse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// findHeading returns the first h2-h4 element whose collapsed text
// equals heading case-insensitively. Matching is exact equality, not
// fuzzy: a renamed heading silently yields an empty section.
func findHeading(doc *goquery.Document, heading string) *html.Node {
	var found *html.Node
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(collapse(s.Text()), heading) {
			found = s.Nodes[0]
			return false
		}
		return true
	})
	return found
}

// nextElement returns the first element after start in document order
// (descendants included) whose tag is one of names.
func nextElement(start *html.Node, names ...string) *html.Node {
	for n := successor(start); n != nil; n = successor(n) {
		if n.Type != html.ElementNode {
			continue
		}
		for _, name := range names {
			if n.Data == name {
				return n
			}
		}
	}
	return nil
}

// successor is the document-order traversal step: first child, else
// next sibling, else the nearest ancestor's next sibling.
func successor(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// listItems returns the collapsed text of each non-empty <li> under
// container.
func listItems(container *html.Node) []string {
	var items []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				if text := collapse(nodeText(c)); text != "" {
					items = append(items, text)
				}
				continue
			}
			walk(c)
		}
	}
	walk(container)
	return items
}

// nodeText concatenates the text nodes under n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// collapse trims and squeezes interior whitespace runs to single
// spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
