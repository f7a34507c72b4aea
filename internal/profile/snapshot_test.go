package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispman/dispman/internal/ddc"
	"github.com/dispman/dispman/internal/monitor"
)

// fakeDevice simulates one monitor's VCP state. Codes in failing return
// ErrUnsupported on both read and write.
type fakeDevice struct {
	state   map[uint8]uint32
	maxima  map[uint8]uint32
	failing map[uint8]bool
	writes  int
}

func (f *fakeDevice) GetVCPFeature(code uint8) (uint32, uint32, error) {
	if f.failing[code] {
		return 0, 0, ddc.ErrUnsupported
	}
	max := f.maxima[code]
	if max == 0 {
		max = 100
	}
	return f.state[code], max, nil
}

func (f *fakeDevice) SetVCPFeature(code uint8, value uint32) error {
	if f.failing[code] {
		return ddc.ErrUnsupported
	}
	f.state[code] = value
	f.writes++
	return nil
}

func (f *fakeDevice) CapabilitiesString() (string, error) { return "", nil }
func (f *fakeDevice) Description() string                 { return "fake" }
func (f *fakeDevice) Close() error                        { return nil }

func newFakeDisplay(index int, dev *fakeDevice) *monitor.Display {
	return &monitor.Display{Index: index, Description: "fake", Device: dev}
}

func TestCaptureRecordsUnavailable(t *testing.T) {
	dev := &fakeDevice{
		state:   map[uint8]uint32{0x10: 70, 0x12: 75, 0x60: 0x11, 0xD6: 0x01},
		failing: map[uint8]bool{0x62: true}, // no speakers
	}
	snap := Capture([]*monitor.Display{newFakeDisplay(0, dev)}, ddc.WithDelay(0))

	require.Len(t, snap, 1)
	require.Len(t, snap[0].Values, 5)

	byCode := map[uint8]CodeValue{}
	for _, cv := range snap[0].Values {
		byCode[cv.Code] = cv
	}
	assert.Equal(t, uint32(70), byCode[0x10].Value)
	assert.Equal(t, uint32(0x11), byCode[0x60].Value)
	assert.True(t, byCode[0x62].Unavailable)
	assert.False(t, byCode[0x10].Unavailable)
}

func TestSaveThenLoadNoMismatch(t *testing.T) {
	dev := &fakeDevice{state: map[uint8]uint32{0x10: 70, 0x12: 75, 0x60: 0x11, 0x62: 30, 0xD6: 0x01}}
	displays := []*monitor.Display{newFakeDisplay(0, dev)}

	snap := Capture(displays, ddc.WithDelay(0))
	results := snap.Apply(displays, ddc.WithDelay(0))

	assert.Empty(t, Failures(results))
	assert.Len(t, results, 5)

	// Re-reading after apply yields the captured values unchanged.
	verify := Capture(displays, ddc.WithDelay(0))
	assert.Equal(t, snap, verify)
}

func TestApplySkipsUnavailable(t *testing.T) {
	dev := &fakeDevice{state: map[uint8]uint32{0x10: 50}}
	displays := []*monitor.Display{newFakeDisplay(0, dev)}

	snap := Snapshot{{
		Index: 0,
		Values: []CodeValue{
			{Code: 0x10, Value: 80, Max: 100},
			{Code: 0x62, Unavailable: true},
		},
	}}

	results := snap.Apply(displays, ddc.WithDelay(0))
	assert.Len(t, results, 1)
	assert.Empty(t, Failures(results))
	assert.Equal(t, uint32(80), dev.state[0x10])
	assert.Equal(t, 1, dev.writes)
}

func TestApplyPartialFailure(t *testing.T) {
	dev := &fakeDevice{
		state:   map[uint8]uint32{0x10: 50, 0x12: 50},
		failing: map[uint8]bool{0x60: true},
	}
	displays := []*monitor.Display{newFakeDisplay(0, dev)}

	snap := Snapshot{{
		Index: 0,
		Values: []CodeValue{
			{Code: 0x10, Value: 80, Max: 100},
			{Code: 0x60, Value: 0x11, Max: 0x12},
			{Code: 0x12, Value: 60, Max: 100},
		},
	}}

	results := snap.Apply(displays, ddc.WithDelay(0))
	require.Len(t, results, 3)

	failed := Failures(results)
	require.Len(t, failed, 1)
	assert.Equal(t, uint8(0x60), failed[0].Code)
	assert.ErrorIs(t, failed[0].Err, ddc.ErrUnsupported)

	// The failure did not block the writes around it.
	assert.Equal(t, uint32(80), dev.state[0x10])
	assert.Equal(t, uint32(60), dev.state[0x12])
}

func TestApplyMissingDisplay(t *testing.T) {
	dev := &fakeDevice{state: map[uint8]uint32{0x10: 50}}
	displays := []*monitor.Display{newFakeDisplay(0, dev)}

	snap := Snapshot{
		{Index: 0, Values: []CodeValue{{Code: 0x10, Value: 60, Max: 100}}},
		{Index: 1, Values: []CodeValue{{Code: 0x10, Value: 90, Max: 100}}},
	}

	results := snap.Apply(displays, ddc.WithDelay(0))
	require.Len(t, results, 2)

	failed := Failures(results)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Display)
	assert.ErrorIs(t, failed[0].Err, monitor.ErrDisplayNotFound)

	// Display 0 was still applied.
	assert.Equal(t, uint32(60), dev.state[0x10])
}
