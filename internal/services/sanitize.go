package services

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const strippedElements = "script, style, iframe, object, embed, link, meta, base, form"

// SanitizeHTML drops active content from model-authored HTML: script-like
// elements, on* handlers and javascript: URLs. Layout markup is kept.
func SanitizeHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return html.EscapeString(fragment)
	}

	doc.Find(strippedElements).Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				if unsafeAttr(attr) {
					continue
				}
				kept = append(kept, attr)
			}
			node.Attr = kept
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return html.EscapeString(fragment)
	}

	return strings.TrimSpace(out)
}

// HTMLToText flattens HTML to whitespace-normalized text.
func HTMLToText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	doc.Find("script, style").Remove()
	doc.Find("br, p, div, li, h1, h2, h3, h4, section, header").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return NormalizeText(doc.Text())
}

func unsafeAttr(attr html.Attribute) bool {
	key := strings.ToLower(attr.Key)
	if strings.HasPrefix(key, "on") {
		return true
	}
	switch key {
	case "href", "src", "action", "formaction", "xlink:href":
		val := strings.ToLower(strings.TrimSpace(attr.Val))
		return strings.HasPrefix(val, "javascript:") || strings.HasPrefix(val, "vbscript:")
	}
	return false
}
