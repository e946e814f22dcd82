// Package chart draws the recommendation category bar chart as a PNG.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"unicode"

	"github.com/spaolacci/murmur3"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lox/towerdash/internal/insights"
	"github.com/lox/towerdash/internal/report"
)

// Layout in pixels.
const (
	Width       = 800
	titleHeight = 40
	rowHeight   = 28
	barHeight   = 18
	labelWidth  = 280
	marginX     = 16
	marginY     = 16
)

const title = "Most Common Issues Across Towers"

var (
	background = color.RGBA{255, 255, 255, 255}
	textColor  = color.RGBA{33, 33, 33, 255}
	mutedColor = color.RGBA{120, 120, 120, 255}
)

// Categories draws one horizontal bar per category in the given order.
// Bars take the severity colour of their category text.
func Categories(cats []insights.CategoryCount, c *report.Classifier) ([]byte, error) {
	if c == nil {
		c = report.DefaultClassifier
	}

	rows := len(cats)
	if rows == 0 {
		rows = 1
	}
	height := marginY*2 + titleHeight + rows*rowHeight
	img := image.NewRGBA(image.Rect(0, 0, Width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawText(img, title, marginX, marginY+20, textColor, face)

	if len(cats) == 0 {
		drawText(img, "No recommendations in range", marginX, marginY+titleHeight+18, mutedColor, face)
		return encode(img)
	}

	maxCount := 0
	for _, cc := range cats {
		if cc.Count > maxCount {
			maxCount = cc.Count
		}
	}

	barArea := Width - labelWidth - marginX*2 - 48
	for i, cc := range cats {
		top := marginY + titleHeight + i*rowHeight
		baseline := top + (rowHeight+face.Ascent)/2

		label := truncate(asciiLabel(cc.Category), (labelWidth-8)/face.Advance)
		drawText(img, label, marginX, baseline, textColor, face)

		w := barArea * cc.Count / maxCount
		if w < 2 {
			w = 2
		}
		barTop := top + (rowHeight-barHeight)/2
		bar := image.Rect(marginX+labelWidth, barTop, marginX+labelWidth+w, barTop+barHeight)
		draw.Draw(img, bar, image.NewUniform(barColor(c.Classify(cc.Category))), image.Point{}, draw.Src)

		drawText(img, fmt.Sprintf("%d", cc.Count), bar.Max.X+6, baseline, mutedColor, face)
	}

	return encode(img)
}

// Key identifies a rendering for caching: the category list and the
// marker rules that colour its bars. A nil classifier means
// report.DefaultClassifier.
func Key(cats []insights.CategoryCount, c *report.Classifier) string {
	if c == nil {
		c = report.DefaultClassifier
	}
	h := murmur3.New128()
	for _, rule := range c.Rules() {
		fmt.Fprintf(h, "%s\x00%s\x00", rule.Marker, rule.Severity)
	}
	h.Write([]byte{0})
	for _, cc := range cats {
		fmt.Fprintf(h, "%s\x00%d\x00", cc.Category, cc.Count)
	}
	hi, lo := h.Sum128()
	return fmt.Sprintf("%016x%016x", hi, lo)
}

func barColor(s report.Severity) color.RGBA {
	r, g, b, err := report.RGB(report.StyleFor(s).Background)
	if err != nil {
		return textColor
	}
	return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText draws text with its baseline at y.
func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// asciiLabel keeps what the bitmap font can draw. Markers and other
// symbols are removed.
func asciiLabel(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsPrint(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n || n < 4 {
		return s
	}
	return s[:n-3] + "..."
}
