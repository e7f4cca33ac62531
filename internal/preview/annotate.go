package preview

import (
	"fmt"
	"image"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi     float64 = 72
	size    float64 = 13
	spacing float64 = 1.2
)

type annotator struct {
	context *freetype.Context
}

func newAnnotator() (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(size)
	context.SetSrc(image.White)
	context.SetHinting(font.HintingFull)

	return &annotator{context: context}, nil
}

func (a *annotator) annotate(img *image.RGBA, s *scene) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, *scene) error
	}{
		{"drawing scale", a.drawScale},
		{"drawing labels", a.drawLabels},
		{"drawing info", a.drawInfo},
	}
	for _, op := range ops {
		if err := op.fn(img, s); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *annotator) drawScale(img *image.RGBA, s *scene) error {
	for _, line := range s.grid {
		pt := freetype.Pt(line.px+3, s.area.Min.Y-4)
		if _, err := a.context.DrawString(humanMeters(line.meters), pt); err != nil {
			return err
		}
	}
	return nil
}

func (a *annotator) drawLabels(img *image.RGBA, s *scene) error {
	for _, p := range s.points {
		pt := freetype.Pt(p.px.X+6, p.px.Y-6)
		if _, err := a.context.DrawString(p.label, pt); err != nil {
			return err
		}
	}
	return nil
}

func (a *annotator) drawInfo(img *image.RGBA, s *scene) error {
	imgSize := img.Bounds().Size()
	lineHeight := size * spacing
	top, left := imgSize.Y-int(math.Round(4*lineHeight)), 6

	strings := []string{
		fmt.Sprintf("Mission %s", s.planID),
		fmt.Sprintf("Nodes: %d, local waypoints: %d, global waypoints: %d, skipped: %d", s.numNodes, len(s.points)-1, s.numGlobal, s.skipped),
		fmt.Sprintf("Extent: %s x %s", humanMeters(s.extentX), humanMeters(s.extentY)),
	}

	pt := freetype.Pt(left, top)
	for _, str := range strings {
		if _, err := a.context.DrawString(str, pt); err != nil {
			return err
		}
		pt.Y += a.context.PointToFixed(lineHeight)
	}

	return nil
}

func humanMeters(m float64) string {
	return humanize.SIWithDigits(m, 1, "m")
}
