// Package profile persists named multi-monitor VCP snapshots and replays
// them. DDC/CI has no transactions, so apply reports per-pair results
// instead of pretending to be atomic.
package profile

import (
	"fmt"

	"github.com/dispman/dispman/internal/ddc"
	"github.com/dispman/dispman/internal/monitor"
	"github.com/dispman/dispman/internal/vcp"
)

// CodeValue is one captured feature value. Unavailable marks codes the
// monitor refused to report at save time; apply skips them.
type CodeValue struct {
	Code        uint8  `json:"code"`
	Value       uint32 `json:"value"`
	Max         uint32 `json:"max,omitempty"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

// DisplaySnapshot is one display's captured values. The display index is
// the match key on load (positional policy); the description is recorded
// so a description-based matching strategy can be added later.
type DisplaySnapshot struct {
	Index       int         `json:"display"`
	Description string      `json:"description"`
	Values      []CodeValue `json:"values"`
}

// Snapshot is an ordered per-display capture.
type Snapshot []DisplaySnapshot

// ApplyResult is the outcome of one (display, code) write.
type ApplyResult struct {
	Display int
	Code    uint8
	Err     error
}

// Capture reads the well-known feature set (brightness, contrast, input,
// volume, power) from every display. A failed read is recorded as
// unavailable; capture never aborts on one bad code or display.
func Capture(displays []*monitor.Display, opts ...ddc.Option) Snapshot {
	snap := make(Snapshot, 0, len(displays))
	for _, d := range displays {
		tr := ddc.NewTransport(d.Device, opts...)
		ds := DisplaySnapshot{
			Index:       d.Index,
			Description: d.Description,
		}
		for _, code := range vcp.Snapshot() {
			v, err := tr.Read(code.Value)
			if err != nil {
				ds.Values = append(ds.Values, CodeValue{Code: code.Value, Unavailable: true})
				continue
			}
			ds.Values = append(ds.Values, CodeValue{
				Code:  code.Value,
				Value: v.Current,
				Max:   v.Max,
			})
		}
		snap = append(snap, ds)
	}
	return snap
}

// Apply replays a snapshot onto the currently enumerated displays,
// matching by positional index. Every (display, code) pair yields a
// result; failures never stop the remaining writes.
func (s Snapshot) Apply(displays []*monitor.Display, opts ...ddc.Option) []ApplyResult {
	var results []ApplyResult
	for _, ds := range s {
		target, err := monitor.Select(displays, ds.Index)
		if err != nil {
			for _, cv := range ds.Values {
				if cv.Unavailable {
					continue
				}
				results = append(results, ApplyResult{Display: ds.Index, Code: cv.Code, Err: err})
			}
			continue
		}

		tr := ddc.NewTransport(target.Device, opts...)
		for _, cv := range ds.Values {
			if cv.Unavailable {
				continue
			}
			err := tr.Write(cv.Code, cv.Value, cv.Max)
			results = append(results, ApplyResult{Display: ds.Index, Code: cv.Code, Err: err})
		}
	}
	return results
}

// Failures filters apply results down to the failed pairs.
func Failures(results []ApplyResult) []ApplyResult {
	var out []ApplyResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// String renders a result for diagnostics.
func (r ApplyResult) String() string {
	label := vcp.FromValue(r.Code).Label()
	if r.Err != nil {
		return fmt.Sprintf("display %d %s: %v", r.Display, label, r.Err)
	}
	return fmt.Sprintf("display %d %s: ok", r.Display, label)
}
