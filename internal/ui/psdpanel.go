package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/olivier-w/iqview/internal/plot"
	"github.com/olivier-w/iqview/internal/series"
	"github.com/olivier-w/iqview/internal/spectral"
	"github.com/olivier-w/iqview/internal/util"
)

// psdDynamicRange is how far below the peak the panel's y axis reaches.
const psdDynamicRange = 120.0

// psdPanel shows the last computed spectrum with an eased y range.
type psdPanel struct {
	result  spectral.Result
	r       series.Range
	limited bool
	visible bool
	spring  *plot.SpringRange
}

func newPSDPanel() psdPanel {
	return psdPanel{spring: plot.NewSpringRange(int(1/frameInterval.Seconds()), 6, 1)}
}

func (p *psdPanel) set(res spectral.Result, r series.Range, limited bool) {
	p.result = res
	p.r = r
	p.limited = limited
	p.visible = true
}

// targetRange spans the finite powers, limited to psdDynamicRange below
// the peak, with a little headroom.
func targetRange(res spectral.Result) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range res.PowerDB {
		if v <= spectral.FloorDB {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(hi, -1) {
		return spectral.FloorDB, spectral.FloorDB + 10
	}
	lo = math.Max(lo, hi-psdDynamicRange)
	if hi-lo < 10 {
		lo = hi - 10
	}
	return lo - 3, hi + 3
}

// step advances the y-range animation and reports whether it is still moving.
func (p *psdPanel) step() bool {
	if !p.visible || len(p.result.PowerDB) == 0 {
		return false
	}
	lo, hi := targetRange(p.result)
	p.spring.Step(lo, hi)
	return !p.spring.Settled(lo, hi, 0.05)
}

func signedSeconds(v float64) string {
	if v < 0 {
		return "-" + util.FormatSeconds(-v)
	}
	return util.FormatSeconds(v)
}

func (p psdPanel) view(width, height int) string {
	res := p.result
	n := len(res.Freqs)
	if n == 0 {
		return ""
	}
	lo, hi := p.spring.Range()
	if lo >= hi {
		lo, hi = targetRange(res)
	}

	freq, power := res.Peak()
	info := fmt.Sprintf("PSD  peak %s at %.1f dB  segments %d  samples %d-%d",
		util.FormatHz(freq), power, res.Segments, p.r.Start, p.r.End)
	if p.limited {
		info += "  (window truncated)"
	}

	ch := plot.Chart{
		Width:  width,
		Height: max(height-1, 3),
		X1:     res.Freqs[0],
		X2:     res.Freqs[n-1],
		Y1:     lo,
		Y2:     hi,
		XTick:  util.FormatHz,
		YTick:  func(v float64) string { return fmt.Sprintf("%.0f dB", v) },
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(info))
	b.WriteString("\n")
	b.WriteString(ch.Render([]plot.Series{{Name: "psd", X: res.Freqs, Y: res.PowerDB}}))
	return b.String()
}
