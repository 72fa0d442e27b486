package server

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"net/http"

	"codeberg.org/kvo/std/errors"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"mojejecna/site"
)

const (
	cellW    = 140
	cellH    = 72
	headerW  = 90
	headerH  = 40
	cellPad  = 4
	maxSplit = 2 // lessons drawn per cell; further parallel groups are elided
)

var (
	charcoal = color.RGBA{0x30, 0x30, 0x30, 0xff}
	silver   = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
)

var palette = []color.RGBA{
	{0x00, 0x28, 0x70, 0xff}, // dark blue
	{0x00, 0x70, 0x00, 0xff}, // green
	{0x58, 0x09, 0x7e, 0xff}, // purple
	{0xb4, 0x3a, 0x83, 0xff}, // pink
	{0xaa, 0x00, 0x00, 0xff}, // dark red
	{0xb4, 0x6a, 0x00, 0xff}, // ochre
	{0x70, 0x26, 0x00, 0xff}, // brown
	{0x00, 0x7a, 0xa8, 0xff}, // cerulean blue
	{0x4f, 0x00, 0x2a, 0xff}, // tyrian purple
	{0x00, 0x38, 0x34, 0xff}, // myrtle green
}

func fillrect(img *image.RGBA, rect image.Rectangle, c color.Color) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			img.Set(x, y, c)
		}
	}
}

func imprint(dest *image.RGBA, text string, face font.Face, pos image.Point) {
	pen := font.Drawer{
		Dst:  dest,
		Src:  image.White,
		Face: face,
	}
	pen.Dot = fixed.Point26_6{
		X: fixed.I(pos.X),
		Y: fixed.I(pos.Y),
	}
	pen.DrawString(text)
}

type faces struct {
	head font.Face
	reg  font.Face
}

func loadFaces() (faces, error) {
	boldttf, err := freetype.ParseFont(gobold.TTF)
	if err != nil {
		return faces{}, errors.New("cannot parse bold font", nil)
	}
	regttf, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return faces{}, errors.New("cannot parse regular font", nil)
	}
	return faces{
		head: truetype.NewFace(boldttf, &truetype.Options{
			Size:    14.0,
			DPI:     72,
			Hinting: font.HintingNone,
		}),
		reg: truetype.NewFace(regttf, &truetype.Options{
			Size:    11.0,
			DPI:     72,
			Hinting: font.HintingNone,
		}),
	}, nil
}

// subjectColor assigns each subject a stable palette color so the same
// subject looks the same across the week.
func subjectColor(colors map[string]color.RGBA, subject string) color.RGBA {
	if c, ok := colors[subject]; ok {
		return c
	}
	c := palette[len(colors)%len(palette)]
	colors[subject] = c
	return c
}

// mkcell draws the lessons of one timetable cell at grid position
// (col, row). A split period stacks its parallel groups vertically.
func mkcell(canvas *image.RGBA, f faces, colors map[string]color.RGBA, lessons []site.Lesson, col, row int) {
	x := headerW + col*cellW + cellPad
	y := headerH + row*cellH + cellPad
	w := cellW - 2*cellPad
	h := cellH - 2*cellPad
	if len(lessons) == 0 {
		return
	}
	shown := lessons
	if len(shown) > maxSplit {
		shown = shown[:maxSplit]
	}
	part := h / len(shown)
	for i, lesson := range shown {
		top := y + i*part
		fillrect(canvas, image.Rect(x, top, x+w, top+part-1), subjectColor(colors, lesson.Subject))
		label := lesson.Subject
		if lesson.Group != "" {
			label += " (" + lesson.Group + ")"
		}
		imprint(canvas, label, f.head, image.Pt(x+4, top+16))
		detail := lesson.Teacher
		if lesson.Room != "" {
			if detail != "" {
				detail += ", "
			}
			detail += lesson.Room
		}
		if part >= 30 {
			imprint(canvas, detail, f.reg, image.Pt(x+4, top+30))
		}
	}
}

// renderTimetable draws the weekly grid as a PNG: periods across the top,
// days down the side, one colored block per lesson.
func renderTimetable(w io.Writer, timetable site.Timetable) error {
	f, err := loadFaces()
	if err != nil {
		return err
	}

	width := headerW + len(timetable.Periods)*cellW
	height := headerH + len(timetable.Days)*cellH
	if len(timetable.Periods) == 0 || len(timetable.Days) == 0 {
		return site.ErrInvalidResp
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{charcoal}, image.Point{}, draw.Src)

	for i, period := range timetable.Periods {
		x := headerW + i*cellW
		fillrect(canvas, image.Rect(x+cellPad, headerH-2, x+cellW-cellPad, headerH-1), silver)
		imprint(canvas, period.Time, f.reg, image.Pt(x+8, 26))
	}

	colors := make(map[string]color.RGBA)
	for row, day := range timetable.Days {
		y := headerH + row*cellH
		imprint(canvas, day.Name, f.head, image.Pt(8, y+cellH/2))
		for col, cell := range day.Cells {
			mkcell(canvas, f, colors, cell, col, row)
		}
	}

	if rw, ok := w.(http.ResponseWriter); ok {
		rw.Header().Set("Content-Type", "image/png")
	}
	return png.Encode(w, canvas)
}
