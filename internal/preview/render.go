// Package preview renders a top-down image of a mission plan's local path.
//
// LocalOffset waypoints are plotted as offsets from the mission reference pose,
// which sits at the origin. Geodetic waypoints are counted but not plotted,
// since placing them needs a projection the contract does not define.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/roman-kulish/mission-control/internal/mission"
	"github.com/roman-kulish/mission-control/internal/waypoint"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 768
	DefaultMargin = 48

	dotRadius = 4
	gridLines = 5
)

var (
	ErrNothingToRender = errors.New("plan has no local waypoints")
	ErrExtentTooLarge  = errors.New("plan extent is too large to draw")
)

// Config configures a Renderer
type Config struct {
	Width         int
	Height        int
	Margin        int
	NoAnnotations bool
}

// Renderer draws mission plans
type Renderer struct {
	config    Config
	annotator *annotator
}

// NewRenderer creates a Renderer, filling unset dimensions with defaults
func NewRenderer(config Config) (*Renderer, error) {
	if config.Width <= 0 {
		config.Width = DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = DefaultHeight
	}
	if config.Margin <= 0 {
		config.Margin = DefaultMargin
	}
	if config.Width <= 2*config.Margin || config.Height <= 2*config.Margin {
		return nil, fmt.Errorf("image %dx%d too small for margin %d", config.Width, config.Height, config.Margin)
	}

	r := Renderer{config: config}
	if !config.NoAnnotations {
		var err error
		if r.annotator, err = newAnnotator(); err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
	}

	return &r, nil
}

type point struct {
	x, y  float64 // meters, east/north
	px    image.Point
	label string
	color color.Color
}

type gridLine struct {
	meters float64
	px     int
}

type scene struct {
	area      image.Rectangle
	points    []point // origin first, then local waypoints in execution order
	grid      []gridLine
	planID    string
	numNodes  int
	numGlobal int
	skipped   int // local waypoints with a non-finite offset
	extentX   float64
	extentY   float64
}

// Render draws plan. It fails with ErrNothingToRender when the plan has no
// LocalOffset waypoints.
func (r *Renderer) Render(plan mission.Plan) (*image.RGBA, error) {
	s, err := r.buildScene(plan)
	if err != nil {
		return nil, err
	}
	if len(s.points) < 2 {
		return nil, ErrNothingToRender
	}

	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)

	for _, line := range s.grid {
		for y := s.area.Min.Y; y < s.area.Max.Y; y++ {
			img.Set(line.px, y, gridColor)
		}
	}

	for i := 1; i < len(s.points); i++ {
		drawLine(img, s.points[i-1].px, s.points[i].px, pathColor)
	}
	for _, p := range s.points {
		drawDot(img, p.px, p.color)
	}

	if r.annotator != nil {
		if err := r.annotator.annotate(img, s); err != nil {
			return nil, fmt.Errorf("annotating: %w", err)
		}
	}

	return img, nil
}

func (r *Renderer) buildScene(plan mission.Plan) (*scene, error) {
	s := scene{
		area: image.Rect(r.config.Margin, r.config.Margin,
			r.config.Width-r.config.Margin, r.config.Height-r.config.Margin),
		planID:   plan.ID.String()[:8],
		numNodes: len(plan.Nodes),
		points:   []point{{label: "origin", color: color.White}},
	}

	for i, n := range plan.Nodes {
		w, ok := n.Item.(mission.Waypoint)
		if !ok {
			continue
		}
		switch t := w.Target.(type) {
		case waypoint.LocalOffset:
			if !isFinite(t.Offset.X) || !isFinite(t.Offset.Y) {
				s.skipped++
				continue
			}
			s.points = append(s.points, point{x: t.Offset.X, y: t.Offset.Y, label: fmt.Sprintf("#%d", i)})
		case waypoint.GlobalFixedHeight, waypoint.GlobalRelativeHeight:
			s.numGlobal++
		}
	}

	minX, maxX, minY, maxY := 0.0, 0.0, 0.0, 0.0
	for _, p := range s.points {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	s.extentX, s.extentY = maxX-minX, maxY-minY

	// one scale for both axes keeps the path undistorted
	span := math.Max(s.extentX, s.extentY)
	if !isFinite(span) {
		return nil, ErrExtentTooLarge
	}
	if span == 0 {
		span = 1
	}
	scale := math.Min(float64(s.area.Dx()), float64(s.area.Dy())) / span

	toPixel := func(x, y float64) image.Point {
		return image.Point{
			X: s.area.Min.X + int(math.Round((x-minX)*scale)),
			Y: s.area.Max.Y - int(math.Round((y-minY)*scale)),
		}
	}

	for i := range s.points {
		s.points[i].px = toPixel(s.points[i].x, s.points[i].y)
		if i > 0 {
			s.points[i].color = stepColor(i-1, len(s.points)-1)
		}
	}

	for i := 0; i <= gridLines; i++ {
		meters := minX + span*float64(i)/gridLines
		px := toPixel(meters, minY).X
		if px > s.area.Max.X {
			break
		}
		s.grid = append(s.grid, gridLine{meters: meters, px: px})
	}

	return &s, nil
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// drawLine is Bresenham's line algorithm
func drawLine(img *image.RGBA, a, b image.Point, c color.Color) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	e := dx + dy
	for {
		img.Set(a.X, a.Y, c)
		if a == b {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			a.X += sx
		}
		if e2 <= dx {
			e += dx
			a.Y += sy
		}
	}
}

func drawDot(img *image.RGBA, center image.Point, c color.Color) {
	for y := -dotRadius; y <= dotRadius; y++ {
		for x := -dotRadius; x <= dotRadius; x++ {
			if x*x+y*y <= dotRadius*dotRadius {
				img.Set(center.X+x, center.Y+y, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
