package geometry

import (
	"math"
	"strings"
	"unicode/utf8"
)

// charWidthRatio approximates the average glyph advance as a fraction of
// the font size.
const charWidthRatio = 0.62

// LabelOptions controls label wrapping.
type LabelOptions struct {
	FontSize   float64
	MaxWidth   float64 // maximum text width before wrapping
	LineHeight float64 // multiple of FontSize
	PaddingX   float64
	PaddingY   float64
}

// DefaultLabelOptions returns the options used by edge labels.
func DefaultLabelOptions() LabelOptions {
	return LabelOptions{FontSize: 14, MaxWidth: 200, LineHeight: 1.4, PaddingX: 6, PaddingY: 4}
}

// LabelLayout is the measured box of a wrapped label.
type LabelLayout struct {
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	TextWidth  float64  `json:"textWidth"`
	TextHeight float64  `json:"textHeight"`
	Lines      []string `json:"lines"`
}

// LayoutLabel wraps text to opts.MaxWidth and returns its box, or nil when
// the text is empty or whitespace only. Words longer than a full line are
// split at the character-count boundary.
func LayoutLabel(text string, opts LabelOptions) *LabelLayout {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if opts.FontSize <= 0 {
		opts = DefaultLabelOptions()
	}

	charW := opts.FontSize * charWidthRatio
	maxChars := max(1, int(math.Floor(opts.MaxWidth/charW)))

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrap(para, maxChars)...)
	}

	widest := 0
	for _, l := range lines {
		widest = max(widest, utf8.RuneCountInString(l))
	}

	textW := float64(widest) * charW
	textH := float64(len(lines)) * opts.FontSize * opts.LineHeight
	return &LabelLayout{
		Width:      textW + 2*opts.PaddingX,
		Height:     textH + 2*opts.PaddingY,
		TextWidth:  textW,
		TextHeight: textH,
		Lines:      lines,
	}
}

// wrap greedily fills lines of at most maxChars runes.
func wrap(para string, maxChars int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	cur := ""
	curLen := 0
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if wl > maxChars {
			if curLen > 0 {
				lines = append(lines, cur)
			}
			runes := []rune(w)
			for len(runes) > maxChars {
				lines = append(lines, string(runes[:maxChars]))
				runes = runes[maxChars:]
			}
			cur, curLen = string(runes), len(runes)
			continue
		}
		switch {
		case curLen == 0:
			cur, curLen = w, wl
		case curLen+1+wl <= maxChars:
			cur += " " + w
			curLen += 1 + wl
		default:
			lines = append(lines, cur)
			cur, curLen = w, wl
		}
	}
	if curLen > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// Gap is the blank segment carved out of an edge line behind its label.
type Gap struct {
	Mid        Point   `json:"mid"`
	Start      Point   `json:"start"`
	End        Point   `json:"end"`
	HalfLength float64 `json:"halfLength"`
}

// LabelGap projects a label box centered on the midpoint of start→end onto
// the edge direction and returns the segment the line renderer paints with
// the background color. The half length is |cosθ|·w/2 + |sinθ|·h/2 plus
// padding, clamped to half the edge length.
func LabelGap(start, end Point, labelW, labelH, padding float64) Gap {
	mid := Midpoint(start, end)
	length := Distance(start, end)
	if length == 0 {
		return Gap{Mid: mid, Start: mid, End: mid}
	}

	ux := (end.X - start.X) / length
	uy := (end.Y - start.Y) / length
	half := math.Abs(ux)*labelW/2 + math.Abs(uy)*labelH/2 + padding
	half = math.Min(half, length/2)

	return Gap{
		Mid:        mid,
		Start:      Point{X: mid.X - ux*half, Y: mid.Y - uy*half},
		End:        Point{X: mid.X + ux*half, Y: mid.Y + uy*half},
		HalfLength: half,
	}
}
