// Package pdf lays out journal entries as a paginated A4 report.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/daybook/internal/models"
	"github.com/atinyakov/daybook/internal/richtext"
	"github.com/go-pdf/fpdf"
)

const (
	margin      = 30.0
	footerSpace = 40.0
	cardPadding = 8.0
	cardGap     = 12.0
	lineHeight  = 14.0

	generatedLayout = "Monday, Jan 02 2006 15:04"
	entryLayout     = "Monday, January 02, 2006 03:04 PM"

	noEntries = "No journal entries found."
	noContent = "(no content)"
)

// moodLabels names the moods the core fonts cannot draw.
var moodLabels = map[string]string{
	"🙂": "Content",
	"😀": "Happy",
	"😄": "Joyful",
	"😢": "Sad",
	"😡": "Angry",
	"😴": "Tired",
	"😐": "Neutral",
	"😰": "Anxious",
	"🤩": "Excited",
	"😌": "Calm",
}

// Renderer builds PDF documents. The zero value is not usable; call NewRenderer.
type Renderer struct {
	// Compress toggles stream compression. Tests switch it off to inspect text.
	Compress bool
	// Location is used for every printed timestamp.
	Location *time.Location
	now      func() time.Time
}

// NewRenderer returns a Renderer that prints times in loc.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{Compress: true, Location: loc, now: time.Now}
}

// Render produces the document for username with one card per entry.
// An empty entries slice yields a single placeholder line.
func (r *Renderer) Render(username string, entries []models.Entry, title string) ([]byte, error) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, footerSpace)
	doc.SetCompression(r.Compress)
	doc.SetTitle(title, true)
	doc.SetAuthor(username, true)
	doc.SetCreator("daybook", false)

	generated := r.now().In(r.Location)
	doc.SetCreationDate(generated)

	tr := doc.UnicodeTranslatorFromDescriptor("")
	pageW, _ := doc.GetPageSize()

	doc.SetHeaderFunc(func() {
		cm := doc.GetCellMargin()
		defer doc.SetCellMargin(cm)
		doc.SetCellMargin(0)

		doc.SetFont("Helvetica", "B", 18)
		doc.SetTextColor(0, 0, 0)
		doc.CellFormat(0, 24, tr(title), "", 1, "L", false, 0, "")

		doc.SetFont("Helvetica", "", 10)
		doc.SetTextColor(110, 110, 110)
		doc.CellFormat(0, lineHeight, tr("User: "+username), "", 1, "L", false, 0, "")
		doc.CellFormat(0, lineHeight, "Generated: "+generated.Format(generatedLayout), "", 1, "L", false, 0, "")

		y := doc.GetY() + 6
		doc.SetDrawColor(180, 180, 180)
		doc.Line(margin, y, pageW-margin, y)
		doc.SetY(y + 12)
	})

	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-footerSpace + 10)
		doc.SetFont("Helvetica", "I", 9)
		doc.SetTextColor(110, 110, 110)
		doc.CellFormat(0, 12, fmt.Sprintf("Page %d of {nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	doc.AddPage()

	if len(entries) == 0 {
		doc.SetFont("Helvetica", "I", 11)
		doc.SetTextColor(110, 110, 110)
		doc.CellFormat(0, 20, noEntries, "", 1, "L", false, 0, "")
	}

	for _, e := range entries {
		r.card(doc, tr, pageW, e)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// card draws one bordered entry block. The box is built from full-width
// cells with side borders so it can continue across a page break.
func (r *Renderer) card(doc *fpdf.Fpdf, tr func(string) string, pageW float64, e models.Entry) {
	doc.SetDrawColor(200, 200, 200)
	doc.SetCellMargin(cardPadding)

	doc.CellFormat(0, cardPadding, "", "LTR", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 12)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 16, e.EntryDate.In(r.Location).Format(entryLayout), "LR", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(110, 110, 110)
	doc.CellFormat(0, lineHeight, tr("Mood: "+moodText(e.PrimaryMood)), "LR", 1, "L", false, 0, "")

	if names := e.TagNames(); len(names) > 0 {
		doc.SetTextColor(30, 90, 200)
		doc.CellFormat(0, lineHeight, tr("Tags: "+strings.Join(names, ", ")), "LR", 1, "L", false, 0, "")
	}

	doc.CellFormat(0, 8, "", "LR", 1, "L", false, 0, "")
	y := doc.GetY() - 4
	doc.Line(margin+cardPadding, y, pageW-margin-cardPadding, y)

	text := richtext.ToPlainText(e.Content)
	if text == "" {
		text = noContent
	}
	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(0, 0, 0)
	doc.MultiCell(0, lineHeight, tr(text), "LR", "L", false)

	doc.CellFormat(0, cardPadding, "", "LRB", 1, "L", false, 0, "")
	doc.Ln(cardGap)
}

func moodText(mood string) string {
	if label, ok := moodLabels[mood]; ok {
		return label
	}
	return mood
}
