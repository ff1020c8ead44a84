package formatter

import (
	"strings"
)

type BlockType string

const (
	Heading1   BlockType = "heading1"
	Heading2   BlockType = "heading2"
	BulletItem BlockType = "bullet"
	Paragraph  BlockType = "paragraph"
	Spacer     BlockType = "spacer"
)

const (
	heading1Prefix = "### "
	heading2Prefix = "#### "
	boldDelimiter  = "**"
	bulletMarkers  = "-*"
)

type Run struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Block is one display unit. Headings carry Text only, bullets and paragraphs carry
// Text plus its bold/plain Runs, spacers carry nothing.
type Block struct {
	Type BlockType `json:"type"`
	Text string    `json:"text,omitempty"`
	Runs []Run     `json:"runs,omitempty"`
}

// Format classifies raw reply text line by line. It never fails: anything it does not
// recognise ends up as a plain paragraph.
func Format(raw string) []Block {
	lines := strings.Split(raw, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, classify(strings.TrimSuffix(line, "\r")))
	}
	return blocks
}

func classify(line string) Block {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, heading1Prefix):
		return Block{Type: Heading1, Text: trimmed[len(heading1Prefix):]}
	case strings.HasPrefix(trimmed, heading2Prefix):
		return Block{Type: Heading2, Text: trimmed[len(heading2Prefix):]}
	case isBullet(trimmed):
		content := trimmed[2:]
		return Block{Type: BulletItem, Text: content, Runs: parseRuns(content)}
	case trimmed == "":
		return Block{Type: Spacer}
	default:
		return Block{Type: Paragraph, Text: line, Runs: parseRuns(line)}
	}
}

func isBullet(trimmed string) bool {
	return len(trimmed) >= 2 && trimmed[1] == ' ' && strings.IndexByte(bulletMarkers, trimmed[0]) >= 0
}

// parseRuns pairs bold delimiters left to right: the first opens, the next closes.
// An unmatched opener and an empty pair both stay in the text literally.
func parseRuns(text string) []Run {
	var runs []Run
	var plain strings.Builder

	flushPlain := func() {
		if plain.Len() > 0 {
			runs = append(runs, Run{Text: plain.String()})
			plain.Reset()
		}
	}

	rest := text
	for {
		open := strings.Index(rest, boldDelimiter)
		if open < 0 {
			break
		}
		afterOpen := rest[open+len(boldDelimiter):]
		closeAt := strings.Index(afterOpen, boldDelimiter)
		if closeAt < 0 {
			break
		}

		plain.WriteString(rest[:open])
		if closeAt == 0 {
			plain.WriteString(boldDelimiter + boldDelimiter)
		} else {
			flushPlain()
			runs = append(runs, Run{Text: afterOpen[:closeAt], Bold: true})
		}
		rest = afterOpen[closeAt+len(boldDelimiter):]
	}
	plain.WriteString(rest)
	flushPlain()
	return runs
}

// PlainText renders blocks back into markup-free text, one block per line.
func PlainText(blocks []Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		switch block.Type {
		case Heading1, Heading2:
			b.WriteString(strings.ToUpper(block.Text))
		case BulletItem:
			b.WriteString("• ")
			b.WriteString(runText(block.Runs))
		case Paragraph:
			b.WriteString(runText(block.Runs))
		}
	}
	return b.String()
}

func runText(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
