package injuries

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the document's text with one line per visual row.
func ExtractText(raw []byte) (text string, err error) {
	// The pdf reader panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("injuries: malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("injuries: open pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("injuries: read page %d: %w", i, err)
		}
		for _, row := range rows {
			if line := joinRow(row.Content); line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}

// joinRow glues glyph runs left to right, adding a space where the horizontal
// gap is wider than a fraction of the font size.
func joinRow(content pdf.TextHorizontal) string {
	texts := make([]pdf.Text, len(content))
	copy(texts, content)
	sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })

	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > math.Max(1, prev.FontSize*0.2) && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
