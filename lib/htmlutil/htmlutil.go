package htmlutil

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var tracer = otel.Tracer("webcivil.lib.htmlutil")

var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Title:    true,
	atom.Select:   true,
	atom.Textarea: true,
}

var blocks = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Caption:    true,
	atom.Dd:         true,
	atom.Div:        true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Fieldset:   true,
	atom.Figure:     true,
	atom.Footer:     true,
	atom.Form:       true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Header:     true,
	atom.Hr:         true,
	atom.Li:         true,
	atom.Main:       true,
	atom.Nav:        true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Table:      true,
	atom.Tbody:      true,
	atom.Tfoot:      true,
	atom.Thead:      true,
	atom.Tr:         true,
	atom.Ul:         true,
}

var (
	innerWhitespace = regexp.MustCompile(`\s+`)
	cellSeparator   = regexp.MustCompile(` *\t *`)
	lineWhitespace  = regexp.MustCompile(` {2,}`)
)

func isHidden(node *html.Node) bool {
	for _, a := range node.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		case "type":
			if node.DataAtom == atom.Input && strings.EqualFold(a.Val, "hidden") {
				return true
			}
		}
	}
	return false
}

func renderVisible(node *html.Node, out *strings.Builder) {
	switch node.Type {
	case html.TextNode:
		out.WriteString(innerWhitespace.ReplaceAllString(node.Data, " "))
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if skipped[node.DataAtom] || isHidden(node) {
			return
		}
		switch node.DataAtom {
		case atom.Br:
			out.WriteString("\n")
			return
		case atom.Td, atom.Th:
			if node.PrevSibling != nil {
				out.WriteString("\t")
			}
		}
	}

	block := node.Type == html.ElementNode && blocks[node.DataAtom]
	if block {
		out.WriteString("\n")
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		renderVisible(child, out)
	}
	if block {
		out.WriteString("\n")
	}
}

// VisibleText renders the text a reader would see for a node, roughly like a
// browser's innerText: block elements start new lines, table cells are
// separated by tabs, invisible elements are left out and blank lines are
// dropped.
func VisibleText(node *html.Node) string {
	if node == nil {
		return ""
	}
	var buffer strings.Builder
	renderVisible(node, &buffer)

	lines := strings.Split(buffer.String(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = cellSeparator.ReplaceAllString(line, "\t")
		line = lineWhitespace.ReplaceAllString(line, " ")
		line = strings.Trim(line, " \t")
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// SelectionText is VisibleText over every node of a selection, one node per line.
func SelectionText(sel *goquery.Selection) string {
	parts := make([]string, 0, sel.Length())
	for _, n := range sel.Nodes {
		text := VisibleText(n)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func removeNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, s)
}

// Clean strips non-printable runes and surrounding whitespace.
func Clean(s string) string {
	return strings.TrimSpace(removeNonPrintable(s))
}

// FirstAnchorText returns the cleaned text of the first anchor inside sel,
// or "" when there is none or it has no text.
func FirstAnchorText(ctx context.Context, sel *goquery.Selection) string {
	_, span := tracer.Start(ctx, "FirstAnchorText")
	defer span.End()

	anchor := sel.Find("a").First()
	if anchor.Length() == 0 {
		return ""
	}
	name := Clean(VisibleText(anchor.Get(0)))
	span.AddEvent("anchor", trace.WithAttributes(
		attribute.String("name", name),
		attribute.String("href", anchor.AttrOr("href", "")),
	))
	return name
}
