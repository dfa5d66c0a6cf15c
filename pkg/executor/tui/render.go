package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/thelegendaryrichman/nova/pkg/session"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

const (
	codeStyle     = "monokai"
	codeFormatter = "terminal256"
	landingTitle  = "Nova Super-Browser"
	landingTag    = "Live Connection. Instant Knowledge. Hyper-Local Results."
)

type blockKind int

const (
	blockText blockKind = iota
	blockCode
)

// block is one renderable piece of response text: a paragraph or a fenced
// code listing.
type block struct {
	kind blockKind
	lang string
	text string
}

// splitBlocks breaks content into paragraphs on blank lines and lifts out
// ``` fenced code. An unterminated fence runs to the end of the content.
func splitBlocks(content string) []block {
	var (
		blocks []block
		para   []string
		code   []string
		lang   string
		inCode bool
	)

	flushPara := func() {
		if text := strings.TrimSpace(strings.Join(para, "\n")); text != "" {
			blocks = append(blocks, block{kind: blockText, text: text})
		}
		para = nil
	}
	flushCode := func() {
		blocks = append(blocks, block{kind: blockCode, lang: lang, text: strings.Join(code, "\n")})
		code, lang = nil, ""
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if fence, ok := strings.CutPrefix(trimmed, "```"); ok {
			if inCode {
				flushCode()
			} else {
				flushPara()
				lang = strings.TrimSpace(fence)
			}
			inCode = !inCode
			continue
		}
		switch {
		case inCode:
			code = append(code, line)
		case trimmed == "":
			flushPara()
		default:
			para = append(para, line)
		}
	}
	if inCode {
		flushCode()
	}
	flushPara()
	return blocks
}

// renderTab draws the content pane for a tab. Loading tabs render nothing;
// the view draws the loading indicator in their place.
func renderTab(tab types.Tab, width int) string {
	switch {
	case tab.IsLoading:
		return ""
	case tab.URL == "":
		return renderLanding(width)
	default:
		return renderContent(tab, width)
	}
}

func renderLanding(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, brandStyle.Render(landingTitle)))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, tipsStyle.Render(landingTag)))
	b.WriteString("\n\n")

	suggestions := session.Suggestions()
	cardWidth := (width - 4) / len(suggestions)
	stacked := cardWidth < 28
	if stacked {
		cardWidth = width - 4
	}

	cards := make([]string, 0, len(suggestions))
	for i, s := range suggestions {
		head := lipgloss.NewStyle().Foreground(modeColor(s.Mode)).Bold(true).
			Render(fmt.Sprintf("[alt+%d] %s %s", i+1, modeIcon(s.Mode), s.Title))
		body := tipsStyle.Render(wordWrap(s.Description, cardWidth-4))
		cards = append(cards, cardStyle.Width(cardWidth-2).Render(head+"\n"+body))
	}

	if stacked {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.JoinHorizontal(lipgloss.Top, cards...)))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, tipsStyle.Render("Press alt+1-3 to launch a preset, or type a query below")))
	return b.String()
}

func renderContent(tab types.Tab, width int) string {
	wrapWidth := width - 4
	if wrapWidth <= 0 {
		wrapWidth = 76
	}

	var b strings.Builder
	dot := lipgloss.NewStyle().Foreground(modeColor(tab.Mode)).Render("●")
	b.WriteString("  " + dot + " " + sectionTitleStyle.Render(strings.ToUpper(tab.Mode.String())+" ENGINE FINALIZED"))
	b.WriteString("\n\n")

	if tab.Content == session.FailureMessage {
		b.WriteString("  " + errorStyle.Render(wordWrap(tab.Content, wrapWidth)))
		b.WriteString("\n")
		return b.String()
	}

	for _, blk := range splitBlocks(tab.Content) {
		switch blk.kind {
		case blockCode:
			b.WriteString(indent(highlightCode(blk.text, blk.lang), "    "))
		default:
			b.WriteString(indent(renderParagraph(blk.text, wrapWidth), "  "))
		}
		b.WriteString("\n\n")
	}

	if len(tab.GroundingLinks) > 0 {
		b.WriteString(renderCitations(tab.GroundingLinks, width))
	}
	return b.String()
}

// renderParagraph wraps a paragraph and highlights its first letter.
func renderParagraph(text string, width int) string {
	wrapped := wordWrap(text, width)
	r, size := utf8.DecodeRuneInString(wrapped)
	if r == utf8.RuneError {
		return paragraphStyle.Render(wrapped)
	}
	return dropCapStyle.Render(string(r)) + paragraphStyle.Render(wrapped[size:])
}

func renderCitations(links []types.GroundingLink, width int) string {
	cardWidth := width - 6
	if cardWidth < 20 {
		cardWidth = 20
	}

	var b strings.Builder
	b.WriteString("  " + sectionTitleStyle.Render("❖ LIVE GROUNDING EVIDENCE"))
	b.WriteString("\n")
	for i, link := range links {
		label := fmt.Sprintf("Source Node %d", i+1)
		if i < 9 {
			label += tipsStyle.Render(fmt.Sprintf("  alt+%d copies", i+1))
		}
		body := sectionTitleStyle.Render(label) + "\n" +
			paragraphStyle.Bold(true).Render(truncate(link.Title, cardWidth-4)) + "\n" +
			tipsStyle.Render(truncate(link.URI, cardWidth-4))
		b.WriteString(indent(cardStyle.Width(cardWidth).Render(body), "  "))
		b.WriteString("\n")
	}
	return b.String()
}

// highlightCode renders a code listing with chroma, falling back to the
// raw text when highlighting fails.
func highlightCode(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get(codeFormatter)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		debugLog.Warnf("Failed to tokenise %q code block: %v", lang, err)
		return code
	}

	var b strings.Builder
	if err := formatter.Format(&b, styles.Get(codeStyle), iterator); err != nil {
		debugLog.Warnf("Failed to format %q code block: %v", lang, err)
		return code
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
