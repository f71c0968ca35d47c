package viewport

import (
	"math"

	"github.com/olivier-w/iqview/internal/series"
)

// Mode is the interaction state derived from one input snapshot.
type Mode int

const (
	Normal Mode = iota
	BoxZoom
	FreeDrag
	RawZoomOverride
	Measuring
)

func (m Mode) String() string {
	switch m {
	case BoxZoom:
		return "box zoom"
	case FreeDrag:
		return "pan"
	case RawZoomOverride:
		return "y zoom"
	case Measuring:
		return "measure"
	default:
		return "normal"
	}
}

// Input is the state of the pointer and modifier keys for one frame.
// Pointer coordinates are fractions of the plot area: X runs left to right
// and Y bottom to top, both in [0, 1] while InPlot is set.
type Input struct {
	X, Y   float64
	InPlot bool

	Pressed     bool // primary button held
	DragStarted bool
	DragStopped bool
	Clicked     bool // press and release without movement
	Wheel       int  // notches; positive zooms in

	PanKey     bool
	ZoomYKey   bool
	MeasureKey bool
}

// Mode derives the interaction state from the snapshot alone, given
// whether a measurement drag is in progress.
func (in Input) Mode(measuring bool) Mode {
	switch {
	case measuring:
		return Measuring
	case in.ZoomYKey:
		return RawZoomOverride
	case in.PanKey:
		return FreeDrag
	case in.Pressed && !in.MeasureKey:
		return BoxZoom
	default:
		return Normal
	}
}

// WheelFactor scales the visible span per wheel notch.
const WheelFactor = 0.8

// Controller owns the viewport of one plot: bounds, zoom history,
// measurement cursors and the last rendered query. It is only touched from
// the UI goroutine.
type Controller struct {
	bounds  Bounds
	history []Bounds

	resetPending  bool
	returnPending bool

	length     int
	maxRatio   int
	hasSignal  bool
	sampleRate float64

	measureActive bool
	measure1      float64
	measure2      float64
	has1, has2    bool

	dragging     bool
	dragMode     Mode
	dragX, dragY float64 // pointer fractions at drag start
	dragBounds   Bounds

	query Query
	mode  Mode
}

// New returns a controller showing an empty plot.
func New(sampleRate float64) *Controller {
	return &Controller{
		bounds:     FullBounds(EmptyLength),
		sampleRate: sampleRate,
		maxRatio:   1,
	}
}

// SetSignal switches to a new signal. Measurement and zoom history are
// cleared and the view resets on the next frame.
func (c *Controller) SetSignal(length, maxRatio int) {
	c.length = length
	c.maxRatio = max(maxRatio, 1)
	c.hasSignal = true
	c.history = c.history[:0]
	c.ClearMeasurement()
	c.query = Query{}
	c.resetPending = true
}

func (c *Controller) HasSignal() bool { return c.hasSignal }

func (c *Controller) SetSampleRate(rate float64) { c.sampleRate = rate }
func (c *Controller) SampleRate() float64       { return c.sampleRate }

func (c *Controller) Bounds() Bounds { return c.bounds }
func (c *Controller) Mode() Mode     { return c.mode }

// LastQuery is the range and ratio most recently handed to the renderer.
func (c *Controller) LastQuery() Query { return c.query }

// SetBounds replaces the view, clamping both axes.
func (c *Controller) SetBounds(b Bounds) { c.bounds = c.clamp(b) }

// ResetView requests the full-range view on the next frame.
func (c *Controller) ResetView() { c.resetPending = true }

// ReturnView requests the previous view from the zoom history on the next frame.
func (c *Controller) ReturnView() { c.returnPending = true }

// PushZoom records b as the view to return to.
func (c *Controller) PushZoom(b Bounds) { c.history = append(c.history, b) }

// PopZoom removes and returns the most recently pushed view.
func (c *Controller) PopZoom() (Bounds, bool) {
	if len(c.history) == 0 {
		return Bounds{}, false
	}
	b := c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]
	return b, true
}

// HistoryLen is the depth of the zoom history.
func (c *Controller) HistoryLen() int { return len(c.history) }

func (c *Controller) clamp(b Bounds) Bounds {
	return b.ClampX(c.total()).ClampY()
}

func (c *Controller) total() int {
	if c.hasSignal {
		return c.length
	}
	return EmptyLength
}

// Frame applies one input snapshot.
func (c *Controller) Frame(in Input) {
	c.bounds = c.clamp(c.bounds)

	if c.resetPending {
		c.bounds = FullBounds(c.total())
		c.resetPending = false
		c.returnPending = false
	} else if c.returnPending {
		if b, ok := c.PopZoom(); ok {
			c.bounds = c.clamp(b)
		}
		c.returnPending = false
	}

	if in.Clicked && in.MeasureKey {
		c.ClearMeasurement()
	}
	if in.DragStopped && c.measureActive {
		c.measureActive = false
	}
	if in.DragStarted {
		c.PushZoom(c.bounds)
		c.dragging = true
		c.dragX, c.dragY = in.X, in.Y
		c.dragBounds = c.bounds
		if in.MeasureKey && in.InPlot {
			c.measureActive = true
			c.measure1, c.has1 = c.plotX(in.X), true
			c.has2 = false
		}
		c.dragMode = in.Mode(c.measureActive)
	}
	if c.measureActive && c.has1 && in.InPlot {
		c.measure2, c.has2 = c.plotX(in.X), true
	}

	c.mode = in.Mode(c.measureActive)
	switch {
	case c.mode == FreeDrag && c.dragging && (in.Pressed || in.DragStopped):
		dx := (c.dragX - in.X) * c.dragBounds.Width()
		dy := (c.dragY - in.Y) * c.dragBounds.Height()
		c.bounds = c.clamp(Bounds{
			X1: c.dragBounds.X1 + dx, X2: c.dragBounds.X2 + dx,
			Y1: c.dragBounds.Y1 + dy, Y2: c.dragBounds.Y2 + dy,
		})
	case in.DragStopped && c.dragging && c.dragMode == BoxZoom:
		c.boxZoom(in)
	}
	if in.Wheel != 0 && in.InPlot {
		f := math.Pow(WheelFactor, float64(in.Wheel))
		if in.ZoomYKey {
			c.ZoomY(f, in.Y)
		} else {
			c.ZoomX(f, in.X)
		}
	}

	if in.DragStopped {
		c.dragging = false
	}
}

func (c *Controller) boxZoom(in Input) {
	a := c.dragBounds
	x1, x2 := a.X1+c.dragX*a.Width(), a.X1+in.X*a.Width()
	y1, y2 := a.Y1+c.dragY*a.Height(), a.Y1+in.Y*a.Height()
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if x2-x1 < minXSpan || y2-y1 < minYSpan {
		return
	}
	c.bounds = c.clamp(Bounds{X1: x1, X2: x2, Y1: y1, Y2: y2})
}

// Selection is the box being dragged, in plot units, if any.
func (c *Controller) Selection(in Input) (Bounds, bool) {
	if !c.dragging || c.dragMode != BoxZoom {
		return Bounds{}, false
	}
	a := c.dragBounds
	return Bounds{
		X1: a.X1 + math.Min(c.dragX, in.X)*a.Width(),
		X2: a.X1 + math.Max(c.dragX, in.X)*a.Width(),
		Y1: a.Y1 + math.Min(c.dragY, in.Y)*a.Height(),
		Y2: a.Y1 + math.Max(c.dragY, in.Y)*a.Height(),
	}, true
}

func (c *Controller) plotX(fx float64) float64 {
	return c.bounds.X1 + fx*c.bounds.Width()
}

// ZoomX scales the x span by f about the pointer fraction at.
func (c *Controller) ZoomX(f, at float64) {
	b := c.bounds
	w := math.Min(math.Max(b.Width()*f, minXSpan), spanLimit(c.total()))
	pivot := b.X1 + at*b.Width()
	b.X1 = pivot - at*w
	b.X2 = b.X1 + w
	c.bounds = c.clamp(b)
}

// ZoomY scales the y span by f about the pointer fraction at.
func (c *Controller) ZoomY(f, at float64) {
	b := c.bounds
	h := math.Max(b.Height()*f, minYSpan)
	pivot := b.Y1 + at*b.Height()
	b.Y1 = pivot - at*h
	b.Y2 = b.Y1 + h
	c.bounds = c.clamp(b)
}

// Pan shifts the view by frac of its width.
func (c *Controller) Pan(frac float64) {
	d := frac * c.bounds.Width()
	c.bounds.X1 += d
	c.bounds.X2 += d
	c.bounds = c.clamp(c.bounds)
}

// Query computes and records the range and ratio to render for a plot
// target points wide.
func (c *Controller) Query(target int) (Query, bool) {
	if !c.hasSignal {
		return Query{}, false
	}
	q, ok := ComputeQuery(c.bounds, c.length, c.maxRatio, target)
	if ok {
		c.query = q
	}
	return q, ok
}

// ClearMeasurement drops both cursors.
func (c *Controller) ClearMeasurement() {
	c.measureActive = false
	c.has1, c.has2 = false, false
}

// Measurement returns the two cursors, lowest first.
func (c *Controller) Measurement() (x1, x2 float64, ok bool) {
	if !c.has1 || !c.has2 {
		return 0, 0, false
	}
	return math.Min(c.measure1, c.measure2), math.Max(c.measure1, c.measure2), true
}

// Measuring reports whether a measurement drag is in progress.
func (c *Controller) Measuring() bool { return c.measureActive }

func (c *Controller) window() (x1, x2 float64) {
	if m1, m2, ok := c.Measurement(); ok {
		return m1, m2
	}
	return c.bounds.X1, c.bounds.X2
}

// WindowTime is the span of the measurement, or of the view, in seconds.
func (c *Controller) WindowTime() float64 {
	if c.sampleRate <= 0 {
		return 0
	}
	x1, x2 := c.window()
	return math.Abs(x2-x1) / c.sampleRate
}

// WindowSamples counts the whole samples inside the measurement or view,
// limited to the last rendered range.
func (c *Controller) WindowSamples() int {
	if !c.hasSignal || c.query.Range.Empty() {
		return 0
	}
	x1, x2 := c.window()
	r := c.query.Range
	lo, hi := r.Start, r.End-1
	if f := math.Ceil(x1); f > float64(lo) {
		if f > float64(hi) {
			return 0
		}
		lo = int(f)
	}
	if f := math.Floor(x2); f < float64(hi) {
		if f < float64(lo) {
			return 0
		}
		hi = int(f)
	}
	return hi - lo + 1
}

// MeasuredFrequency is 1/WindowTime while both cursors are set and apart.
func (c *Controller) MeasuredFrequency() (float64, bool) {
	if _, _, ok := c.Measurement(); !ok {
		return 0, false
	}
	t := c.WindowTime()
	if t == 0 {
		return 0, false
	}
	return 1 / t, true
}

// VisibleRange is the last rendered range, for PSD, export and audition.
func (c *Controller) VisibleRange() series.Range { return c.query.Range }
