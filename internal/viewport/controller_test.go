package viewport

import (
	"math"
	"testing"
)

func loaded(t *testing.T, length int) *Controller {
	t.Helper()
	c := New(1000)
	c.SetSignal(length, 64)
	c.Frame(Input{})
	if got := c.Bounds(); got != FullBounds(length) {
		t.Fatalf("expected reset view after SetSignal, got %+v", got)
	}
	return c
}

func TestZoomHistoryLIFO(t *testing.T) {
	c := New(1)
	a := Bounds{X1: 1, X2: 2, Y1: -1, Y2: 1}
	b := Bounds{X1: 3, X2: 4, Y1: -2, Y2: 2}
	c.PushZoom(a)
	c.PushZoom(b)
	if got, ok := c.PopZoom(); !ok || got != b {
		t.Fatalf("expected %+v, got %+v ok=%v", b, got, ok)
	}
	if got, ok := c.PopZoom(); !ok || got != a {
		t.Fatalf("expected %+v, got %+v ok=%v", a, got, ok)
	}
	if _, ok := c.PopZoom(); ok {
		t.Fatal("expected empty history")
	}
}

func TestEmptyControllerShowsDefaultExtent(t *testing.T) {
	c := New(1)
	c.ResetView()
	c.Frame(Input{})
	if got := c.Bounds(); got != FullBounds(EmptyLength) {
		t.Fatalf("unexpected bounds %+v", got)
	}
	if _, ok := c.Query(100); ok {
		t.Fatal("expected no query without a signal")
	}
	if c.WindowSamples() != 0 {
		t.Fatal("expected zero samples without a signal")
	}
}

func TestBoxZoomPushesAtDragStart(t *testing.T) {
	c := loaded(t, 1000)
	before := c.Bounds()

	c.Frame(Input{X: 0.25, Y: 0.5, InPlot: true, Pressed: true, DragStarted: true})
	if c.Mode() != BoxZoom {
		t.Fatalf("expected box zoom mode, got %v", c.Mode())
	}
	if c.HistoryLen() != 1 {
		t.Fatalf("expected history entry at drag start, got %d", c.HistoryLen())
	}
	sel, ok := c.Selection(Input{X: 0.5, Y: 1, InPlot: true})
	if !ok || !approx(sel.X1, 250) || !approx(sel.X2, 500) {
		t.Fatalf("unexpected selection %+v ok=%v", sel, ok)
	}

	// Released outside the plot: history already recorded.
	c.Frame(Input{X: 0.5, Y: 1, DragStopped: true})
	b := c.Bounds()
	if !approx(b.X1, 250) || !approx(b.X2, 500) {
		t.Fatalf("unexpected zoomed bounds %+v", b)
	}
	if !approx(b.Y1, 0) || !approx(b.Y2, before.Y2) {
		t.Fatalf("unexpected zoomed y bounds %+v", b)
	}

	c.ReturnView()
	c.Frame(Input{})
	if got := c.Bounds(); got != before {
		t.Fatalf("expected return to %+v, got %+v", before, got)
	}
}

func TestDegenerateBoxKeepsView(t *testing.T) {
	c := loaded(t, 1000)
	before := c.Bounds()
	c.Frame(Input{X: 0.5, Y: 0.5, InPlot: true, Pressed: true, DragStarted: true})
	c.Frame(Input{X: 0.5, Y: 0.5, InPlot: true, DragStopped: true})
	if c.Bounds() != before {
		t.Fatalf("expected unchanged bounds, got %+v", c.Bounds())
	}
}

func TestFreeDragPans(t *testing.T) {
	c := loaded(t, 1000)
	c.Frame(Input{X: 0.5, Y: 0.5, InPlot: true, Pressed: true, DragStarted: true, PanKey: true})
	c.Frame(Input{X: 0.4, Y: 0.5, InPlot: true, Pressed: true, PanKey: true})
	if c.Mode() != FreeDrag {
		t.Fatalf("expected pan mode, got %v", c.Mode())
	}
	b := c.Bounds()
	if !approx(b.X1, 100) || !approx(b.X2, 1100) {
		t.Fatalf("expected pan by 100 samples, got %+v", b)
	}
	c.Frame(Input{X: 0.4, Y: 0.5, InPlot: true, DragStopped: true, PanKey: true})
	if c.HistoryLen() != 1 {
		t.Fatalf("expected one history entry, got %d", c.HistoryLen())
	}
}

func TestWheelZoomAboutPointer(t *testing.T) {
	c := loaded(t, 1000)
	c.Frame(Input{X: 0.5, Y: 0.5, InPlot: true, Wheel: 1})
	b := c.Bounds()
	if !approx(b.Width(), 800) || !approx((b.X1+b.X2)/2, 500) {
		t.Fatalf("unexpected x zoom %+v", b)
	}

	h := b.Height()
	c.Frame(Input{X: 0.5, Y: 0.5, InPlot: true, Wheel: -1, ZoomYKey: true})
	if c.Mode() != RawZoomOverride {
		t.Fatalf("expected y zoom mode, got %v", c.Mode())
	}
	if got := c.Bounds(); !approx(got.Height(), h/WheelFactor) || !approx(got.Width(), 800) {
		t.Fatalf("unexpected y zoom %+v", got)
	}
}

func TestYZoomOutIsClamped(t *testing.T) {
	c := loaded(t, 1000)
	for range 200 {
		c.Frame(Input{X: 0.5, Y: 0.5, InPlot: true, Wheel: -5, ZoomYKey: true})
	}
	b := c.Bounds()
	if b.Y1 < -YLimit || b.Y2 > YLimit {
		t.Fatalf("y bounds escaped clamp: %+v", b)
	}
}

func TestMeasurementLifecycle(t *testing.T) {
	c := loaded(t, 1000)
	if _, ok := c.Query(2000); !ok {
		t.Fatal("expected query")
	}

	c.Frame(Input{X: 0.1, Y: 0.5, InPlot: true, Pressed: true, DragStarted: true, MeasureKey: true})
	if c.Mode() != Measuring {
		t.Fatalf("expected measuring mode, got %v", c.Mode())
	}
	c.Frame(Input{X: 0.3, Y: 0.5, InPlot: true, Pressed: true, MeasureKey: true})
	c.Frame(Input{X: 0.3, Y: 0.5, InPlot: true, DragStopped: true, MeasureKey: true})
	if c.Measuring() {
		t.Fatal("expected measurement drag to end on release")
	}

	x1, x2, ok := c.Measurement()
	if !ok || !approx(x1, 100) || !approx(x2, 300) {
		t.Fatalf("unexpected cursors %v %v ok=%v", x1, x2, ok)
	}
	if got := c.WindowTime(); !approx(got, 0.2) {
		t.Fatalf("expected 0.2s window, got %v", got)
	}
	if f, ok := c.MeasuredFrequency(); !ok || !approx(f, 5) {
		t.Fatalf("expected 5 Hz, got %v ok=%v", f, ok)
	}
	if got := c.WindowSamples(); got != 201 {
		t.Fatalf("expected 201 samples, got %d", got)
	}
	// Box zoom did not happen on the measurement release.
	if c.Bounds() != FullBounds(1000) {
		t.Fatalf("measurement changed the view: %+v", c.Bounds())
	}

	c.Frame(Input{X: 0.7, Y: 0.5, InPlot: true, Clicked: true, MeasureKey: true})
	if _, _, ok := c.Measurement(); ok {
		t.Fatal("expected click with measure key to clear cursors")
	}
	if _, ok := c.MeasuredFrequency(); ok {
		t.Fatal("expected no frequency after clear")
	}
	if got := c.WindowTime(); !approx(got, 1) {
		t.Fatalf("expected view window of 1s, got %v", got)
	}
}

func TestMeasuredFrequencyZeroSpan(t *testing.T) {
	c := loaded(t, 1000)
	c.Frame(Input{X: 0.2, InPlot: true, Pressed: true, DragStarted: true, MeasureKey: true})
	if _, ok := c.MeasuredFrequency(); ok {
		t.Fatal("expected no frequency for a zero-width measurement")
	}
}

func TestWindowSamplesClampsToRenderedRange(t *testing.T) {
	c := loaded(t, 100)
	c.SetBounds(Bounds{X1: -10.5, X2: 500.5, Y1: -1, Y2: 1})
	q, ok := c.Query(1000)
	if !ok || q.Range.Start != 0 || q.Range.End != 100 {
		t.Fatalf("unexpected query %+v ok=%v", q, ok)
	}
	if got := c.WindowSamples(); got != 100 {
		t.Fatalf("expected 100 samples, got %d", got)
	}

	c.SetBounds(Bounds{X1: 10.2, X2: 10.8, Y1: -1, Y2: 1})
	c.Query(1000)
	if got := c.WindowSamples(); got != 0 {
		t.Fatalf("expected 0 samples between integer indices, got %d", got)
	}
}

func TestSetSignalClearsState(t *testing.T) {
	c := loaded(t, 1000)
	c.Frame(Input{X: 0.1, InPlot: true, Pressed: true, DragStarted: true, MeasureKey: true})
	c.Frame(Input{X: 0.2, InPlot: true, DragStopped: true, MeasureKey: true})
	c.Pan(0.5)

	c.SetSignal(50, 4)
	if c.HistoryLen() != 0 {
		t.Fatal("expected history cleared")
	}
	if _, _, ok := c.Measurement(); ok {
		t.Fatal("expected measurement cleared")
	}
	c.Frame(Input{})
	if c.Bounds() != FullBounds(50) {
		t.Fatalf("expected reset to new signal, got %+v", c.Bounds())
	}
}

func TestResetWinsOverReturn(t *testing.T) {
	c := loaded(t, 1000)
	c.PushZoom(Bounds{X1: 5, X2: 6, Y1: -1, Y2: 1})
	c.Pan(1)
	c.ResetView()
	c.ReturnView()
	c.Frame(Input{})
	if c.Bounds() != FullBounds(1000) {
		t.Fatalf("expected reset, got %+v", c.Bounds())
	}
	if c.HistoryLen() != 1 {
		t.Fatal("reset should not consume history")
	}
}

func TestXZoomOutIsBounded(t *testing.T) {
	c := loaded(t, 1000)
	for range 4000 {
		c.Frame(Input{X: 0.3, Y: 0.5, InPlot: true, Wheel: -1})
	}
	b := c.Bounds()
	if !finite(b.X1) || !finite(b.X2) {
		t.Fatalf("x bounds overflowed: %+v", b)
	}
	if b.Width() > XSpanLimit*1000+1e-6 {
		t.Fatalf("x span %v exceeds limit", b.Width())
	}
	q, ok := c.Query(400)
	if !ok || q.Range.Start != 0 || q.Range.End != 1000 {
		t.Fatalf("unexpected query %+v ok=%v", q, ok)
	}
	if got := c.WindowTime(); !finite(got) {
		t.Fatalf("expected finite window time, got %v", got)
	}

	for range 1000 {
		c.Pan(1)
	}
	b = c.Bounds()
	if b.X2 > 1000+XSpanLimit*1000+1e-6 || b.X1 < -XSpanLimit*1000-1e-6 {
		t.Fatalf("pan escaped clamp: %+v", b)
	}
}

func TestSetBoundsRejectsNonFinite(t *testing.T) {
	c := loaded(t, 1000)
	c.SetBounds(Bounds{X1: math.Inf(-1), X2: math.NaN(), Y1: -1, Y2: 1})
	if b := c.Bounds(); b.X1 != 0 || b.X2 != 1000 {
		t.Fatalf("expected full x range, got %+v", b)
	}
}
