package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/jonboulle/clockwork"
	"golang.org/x/text/encoding/charmap"
)

// Download conventions for the exported report.
const (
	DocumentFilename = "filtered_recommendations.pdf"
	DocumentMIMEType = "application/pdf"
)

// Block is one row of the document, in view order.
type Block struct {
	Heading        string
	Recommendation string
	Severity       Severity
	Style          Style
}

// Text is the block's content: "Tower <id> (<operator> - <network>): <recommendation>".
func (b Block) Text() string {
	return b.Heading + ": " + b.Recommendation
}

// Document is a finished PDF. Bytes is never partially written.
type Document struct {
	Filename    string
	MIMEType    string
	Blocks      []Block
	Bytes       []byte
	Pages       int
	Fingerprint string
}

// Blocks builds document blocks from view in order.
func Blocks(view *FilteredView, c *Classifier) []Block {
	if c == nil {
		c = DefaultClassifier
	}
	if view == nil {
		return nil
	}
	blocks := make([]Block, 0, view.Len())
	for _, rec := range view.Rows {
		sev := c.Classify(rec.Recommendation)
		blocks = append(blocks, Block{
			Heading:        Heading(rec),
			Recommendation: rec.Recommendation,
			Severity:       sev,
			Style:          StyleFor(sev),
		})
	}
	return blocks
}

// Renderer lays out FilteredViews as A4 PDFs.
type Renderer struct {
	classifier *Classifier
	clock      clockwork.Clock
	title      string
	noCompress bool
}

// NewRenderer returns a renderer. Nil arguments select DefaultClassifier
// and the real clock. The clock only stamps the PDF's creation date.
func NewRenderer(c *Classifier, clock clockwork.Clock) *Renderer {
	if c == nil {
		c = DefaultClassifier
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Renderer{classifier: c, clock: clock, title: "Tower Recommendations"}
}

// Document renders view. An empty view yields ErrEmptyView and no document.
func (r *Renderer) Document(view *FilteredView) (*Document, error) {
	if view.Empty() {
		return nil, ErrEmptyView
	}
	blocks := Blocks(view, r.classifier)
	now := r.clock.Now().UTC().Truncate(time.Second)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCompression(!r.noCompress)
	pdf.SetTitle(r.title, true)
	pdf.SetCreator("towerdash", true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	header := HeaderLine(view, len(blocks))
	pdf.AddPage()
	r.addHeader(pdf, header)

	for _, b := range blocks {
		if err := r.addBlock(pdf, b); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return &Document{
		Filename:    DocumentFilename,
		MIMEType:    DocumentMIMEType,
		Blocks:      blocks,
		Bytes:       buf.Bytes(),
		Pages:       pdf.PageNo(),
		Fingerprint: Fingerprint(header, blocks),
	}, nil
}

// HeaderLine summarises the filter under the title: the date range, the
// search term and how many towers are shown.
func HeaderLine(view *FilteredView, n int) string {
	var parts []string
	if view.RangeApplied {
		parts = append(parts, "Dates "+formatBound(view.Range.Start)+" to "+formatBound(view.Range.End))
	}
	if view.Search != "" {
		parts = append(parts, "Search \""+view.Search+"\"")
	}
	summary := fmt.Sprintf("%d tower(s)", n)
	if view.Truncated {
		summary = fmt.Sprintf("First %d of %d tower(s)", n, len(view.Matched))
	}
	parts = append(parts, summary)
	return strings.Join(parts, " | ")
}

func (r *Renderer) addHeader(pdf *fpdf.Fpdf, header string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(23, 23, 161)
	pdf.CellFormat(0, 10, r.title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5, r.pdfText(header), "", "L", false)
	pdf.Ln(4)
}

// addBlock draws one filled paragraph: a bold heading line followed by the
// recommendation, both on the severity's background.
func (r *Renderer) addBlock(pdf *fpdf.Fpdf, b Block) error {
	br, bg, bb, err := RGB(b.Style.Background)
	if err != nil {
		return err
	}
	fr, fg, fb, err := RGB(b.Style.Foreground)
	if err != nil {
		return err
	}

	pdf.SetFillColor(br, bg, bb)
	pdf.SetTextColor(fr, fg, fb)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(0, 6, r.pdfText(b.Heading+":"), "", "L", true)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, r.pdfText(b.Recommendation), "", "L", true)
	pdf.Ln(4)
	return nil
}

var pdfReplacer = strings.NewReplacer(
	"→", "->",
	"←", "<-",
)

// pdfText maps text into Windows-1252 for the core fonts. Markers become
// their labels; other runes outside the code page are dropped.
func (r *Renderer) pdfText(s string) string {
	for _, rule := range r.classifier.rules {
		s = strings.ReplaceAll(s, rule.Marker, rule.pdfLabel())
	}
	s = strings.Map(func(ch rune) rune {
		if ch < 0x80 {
			return ch
		}
		if _, ok := charmap.Windows1252.EncodeRune(ch); ok {
			return ch
		}
		return -1
	}, pdfReplacer.Replace(s))
	s = strings.Join(strings.Fields(s), " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		if ch < 0x80 {
			b.WriteByte(byte(ch))
			continue
		}
		c, _ := charmap.Windows1252.EncodeRune(ch)
		b.WriteByte(c)
	}
	return b.String()
}
