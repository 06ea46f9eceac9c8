package fetch

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags stripped outright from fetched pages.
var strippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"link":   true,
}

// Class combinations marking template/navigation boilerplate. An element is
// removed when it carries every class in one combination.
var strippedClasses = [][]string{
	{"infoBox"},
	{"mobile-noteTA-0"},
	{"toc"},
	{"navbox", "largeNavbox"},
	{"mw-editsection-bracket"},
	{"notice", "dablink"},
}

// Clean strips boilerplate from a rendered wiki page: script/style/link
// tags, template and navigation blocks, and edit-section chrome. Section
// headings are collapsed to the text of their mw-headline span so the
// markdown conversion sees plain heading titles.
func Clean(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		var next *html.Node
		for c := n.FirstChild; c != nil; c = next {
			next = c.NextSibling
			if c.Type == html.ElementNode && (strippedTags[c.Data] || boilerplate(c)) {
				n.RemoveChild(c)
				continue
			}
			if c.Type == html.ElementNode && (c.Data == "h2" || c.Data == "h3") {
				collapseHeadline(c)
			}
			walk(c)
		}
	}
	walk(doc)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func boilerplate(n *html.Node) bool {
	classes := classSet(n)
	if len(classes) == 0 {
		return false
	}
	for _, combo := range strippedClasses {
		all := true
		for _, cls := range combo {
			if !classes[cls] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func classSet(n *html.Node) map[string]bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		set := make(map[string]bool)
		for _, cls := range strings.Fields(attr.Val) {
			set[cls] = true
		}
		return set
	}
	return nil
}

// collapseHeadline replaces a heading's children with the plain text of its
// mw-headline span, when one is present.
func collapseHeadline(h *html.Node) {
	span := findByClass(h, "span", "mw-headline")
	if span == nil {
		return
	}
	title := strings.TrimSpace(textContent(span))
	for c := h.FirstChild; c != nil; c = h.FirstChild {
		h.RemoveChild(c)
	}
	h.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}

func findByClass(n *html.Node, tag, class string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag && classSet(n)[class] {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return sb.String()
}

// redirectTarget returns the destination title when the rendered page is a
// redirect stub, or "" for a normal page.
func redirectTarget(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	msg := findByClass(doc, "div", "redirectMsg")
	if msg == nil {
		return ""
	}
	var target string
	var findLink func(n *html.Node)
	findLink = func(n *html.Node) {
		if target != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "title" && attr.Val != "" {
					target = attr.Val
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findLink(c)
		}
	}
	findLink(msg)
	return target
}
