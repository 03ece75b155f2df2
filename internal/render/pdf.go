package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/piwi3910/rectcheck/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// boxColor represents an RGB fill color for a drawn rectangle.
type boxColor struct {
	R, G, B int
}

var boxColors = []boxColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	qrSize       = 24.0
)

// Report bundles everything WritePDF renders: the instance, an optional
// presolved obstacle set, optional found placements (aligned with the
// instance's items), and the seed used by randomized checks.
type Report struct {
	Instance   model.Instance
	Presolved  []geometry.Rect
	Placements []geometry.Rect
	Seed       int64
}

// reportStamp is the QR payload identifying a report, so a printed page can
// be traced back to the exact instance and seed.
type reportStamp struct {
	Name      string `json:"name"`
	Items     int    `json:"items"`
	Obstacles int    `json:"obstacles"`
	Seed      int64  `json:"seed"`
}

// WritePDF renders the report: one page with the original obstacle layout,
// one with the presolved layout when present, one with the placements when
// present, and a QR-stamped summary page.
func WritePDF(path string, r Report) error {
	bb, err := reportBounds(r)
	if err != nil {
		return err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	title := fmt.Sprintf("%s: obstacles (%d)", r.Instance.Name, len(r.Instance.Obstacles))
	renderBoxPage(pdf, title, bb, r.Instance.ObstacleRects(), nil, true)

	if r.Presolved != nil {
		pdf.AddPage()
		title = fmt.Sprintf("%s: presolved obstacles (%d)", r.Instance.Name, len(r.Presolved))
		renderBoxPage(pdf, title, bb, r.Presolved, nil, true)
	}

	if r.Placements != nil {
		labels := make([]string, len(r.Placements))
		for i := range r.Placements {
			if i < len(r.Instance.Items) {
				labels[i] = r.Instance.Items[i].Label
			}
		}
		pdf.AddPage()
		title = fmt.Sprintf("%s: placements (%d)", r.Instance.Name, len(r.Placements))
		renderBoxPage(pdf, title, bb, r.Placements, labels, false)
	}

	pdf.AddPage()
	if err := renderSummaryPage(pdf, r, bb); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// reportBounds computes the drawing frame: the bounding box of every range,
// obstacle, presolved box, and placement in the report.
func reportBounds(r Report) (geometry.Rect, error) {
	var all []geometry.Rect
	for _, it := range r.Instance.Items {
		all = append(all, it.Range())
	}
	all = append(all, r.Instance.ObstacleRects()...)
	all = append(all, r.Presolved...)
	all = append(all, r.Placements...)
	if len(all) == 0 {
		return geometry.Rect{}, fmt.Errorf("render: nothing to draw for instance %q", r.Instance.Name)
	}
	return geometry.BoundingBox(all), nil
}

// renderBoxPage draws one set of rectangles inside the frame bb. Hatched
// boxes are drawn in the obstacle style, plain ones in per-index colors with
// optional labels.
func renderBoxPage(pdf *fpdf.Fpdf, title string, bb geometry.Rect, boxes []geometry.Rect, labels []string, hatched bool) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom
	scale := math.Min(drawWidth/float64(bb.SizeX()), drawHeight/float64(bb.SizeY()))

	canvasW := float64(bb.SizeX()) * scale
	canvasH := float64(bb.SizeY()) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	pdf.SetFillColor(250, 250, 250)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// PDF y grows downward, engine y grows upward.
	toPage := func(r geometry.Rect) (x, y, w, h float64) {
		x = offsetX + float64(r.XMin-bb.XMin)*scale
		y = offsetY + canvasH - float64(r.YMax-bb.YMin)*scale
		w = float64(r.SizeX()) * scale
		h = float64(r.SizeY()) * scale
		return
	}

	for i, box := range boxes {
		x, y, w, h := toPage(box)
		if hatched {
			pdf.SetFillColor(255, 200, 200)
			pdf.SetDrawColor(200, 0, 0)
			pdf.SetLineWidth(0.3)
			pdf.Rect(x, y, w, h, "FD")
			drawHatchPattern(pdf, x, y, w, h)
			continue
		}
		col := boxColors[i%len(boxColors)]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, w, h, "FD")

		label := fmt.Sprintf("%d", i)
		if labels != nil && labels[i] != "" {
			label = labels[i]
		}
		if w > 12 && h > 6 {
			pdf.SetFont("Helvetica", "", 7)
			pdf.SetTextColor(0, 0, 0)
			labelW := pdf.GetStringWidth(label)
			if labelW < w-2 {
				pdf.SetXY(x+(w-labelW)/2, y+h/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark blocked
// area.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	maxDist := w + h
	for d := spacing; d < maxDist; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

func renderSummaryPage(pdf *fpdf.Fpdf, r Report, bb geometry.Rect) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Non-Overlap Check Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	obstacleArea := int64(0)
	for _, o := range r.Instance.ObstacleRects() {
		obstacleArea += o.Area()
	}

	summaryItems := []struct {
		label string
		value string
	}{
		{"Instance", r.Instance.Name},
		{"Frame", bb.String()},
		{"Items", fmt.Sprintf("%d", len(r.Instance.Items))},
		{"Obstacles", fmt.Sprintf("%d (area %d)", len(r.Instance.Obstacles), obstacleArea)},
		{"Presolved obstacles", fmt.Sprintf("%d", len(r.Presolved))},
		{"Placements", fmt.Sprintf("%d", len(r.Placements))},
		{"Seed", fmt.Sprintf("%d", r.Seed)},
	}

	y := marginTop + 18.0
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(100, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	stamp := reportStamp{
		Name:      r.Instance.Name,
		Items:     len(r.Instance.Items),
		Obstacles: len(r.Instance.Obstacles),
		Seed:      r.Seed,
	}
	qrData, err := json.Marshal(stamp)
	if err != nil {
		return fmt.Errorf("render: failed to marshal report stamp: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("render: failed to generate QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("report_stamp", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions("report_stamp", pageWidth-marginRight-qrSize, pageHeight-marginBottom-qrSize,
		qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return nil
}
