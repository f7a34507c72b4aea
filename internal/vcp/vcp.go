package vcp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownSetting is returned by Resolve when a token is neither a
// recognized setting name nor a valid hex feature code.
var ErrUnknownSetting = errors.New("unknown setting")

// Kind describes how a feature's value is interpreted.
type Kind int

const (
	// Continuous features accept any value in [0, max].
	Continuous Kind = iota
	// Enumerated features accept a fixed set of named values.
	Enumerated
)

// Code identifies a single VCP feature.
type Code struct {
	Value uint8
	Name  string
	Kind  Kind
	// Values maps raw bytes to display names for enumerated features.
	Values map[uint32]string
}

// Well-known VCP feature codes (MCCS).
const (
	CodeBrightness  = 0x10
	CodeContrast    = 0x12
	CodeInputSource = 0x60
	CodeVolume      = 0x62
	CodePowerMode   = 0xD6
)

var inputSourceValues = map[uint32]string{
	0x01: "Analog1",
	0x02: "Analog2",
	0x03: "DVI1",
	0x04: "DVI2",
	0x05: "Composite1",
	0x06: "Composite2",
	0x07: "SVideo1",
	0x08: "SVideo2",
	0x09: "Tuner1",
	0x0A: "Tuner2",
	0x0B: "Tuner3",
	0x0C: "Component1",
	0x0D: "Component2",
	0x0E: "Component3",
	0x0F: "DisplayPort1",
	0x10: "DisplayPort2",
	0x11: "HDMI1",
	0x12: "HDMI2",
}

var powerModeValues = map[uint32]string{
	0x01: "on",
	0x04: "standby",
	0x05: "suspend",
	0x06: "off",
}

// registry is the table of well-known features. Vendor-specific codes can
// be appended here without touching any resolution logic.
var registry = []Code{
	{Value: CodeBrightness, Name: "brightness", Kind: Continuous},
	{Value: CodeContrast, Name: "contrast", Kind: Continuous},
	{Value: CodeInputSource, Name: "input", Kind: Enumerated, Values: inputSourceValues},
	{Value: CodeVolume, Name: "volume", Kind: Continuous},
	{Value: CodePowerMode, Name: "power", Kind: Enumerated, Values: powerModeValues},
}

// Resolve maps a user-supplied token to a feature code. Symbolic names and
// hex codes ("0x10" or bare "10") are accepted, case-insensitively. Hex
// codes outside the well-known table resolve to an unnamed continuous code.
func Resolve(token string) (Code, error) {
	t := strings.ToLower(strings.TrimSpace(token))

	for _, c := range registry {
		if c.Name == t {
			return c, nil
		}
	}

	raw := strings.TrimPrefix(t, "0x")
	n, err := strconv.ParseUint(raw, 16, 8)
	if err != nil {
		return Code{}, fmt.Errorf("%w: %q", ErrUnknownSetting, token)
	}
	return FromValue(uint8(n)), nil
}

// FromValue returns the registry entry for a raw code, or an ad-hoc
// continuous code when the value is not in the well-known table.
func FromValue(value uint8) Code {
	for _, c := range registry {
		if c.Value == value {
			return c
		}
	}
	return Code{Value: value, Kind: Continuous}
}

// Known reports whether the code is in the well-known table.
func (c Code) Known() bool { return c.Name != "" }

// Label renders the code for diagnostics, e.g. "brightness (0x10)".
func (c Code) Label() string {
	if c.Name != "" {
		return fmt.Sprintf("%s (0x%02X)", c.Name, c.Value)
	}
	return fmt.Sprintf("0x%02X", c.Value)
}

// Format decodes a raw value into a presentable string: plain integer for
// continuous features, the value name for recognized enumerated values,
// hex for everything else.
func (c Code) Format(value uint32) string {
	switch c.Kind {
	case Enumerated:
		if name, ok := c.Values[value]; ok {
			return name
		}
		return fmt.Sprintf("0x%02X", value)
	default:
		return strconv.FormatUint(uint64(value), 10)
	}
}

// ParseValue is the inverse of Format for user input: enumerated value
// names are accepted case-insensitively alongside plain integers and hex.
func (c Code) ParseValue(token string) (uint32, error) {
	t := strings.ToLower(strings.TrimSpace(token))

	if c.Kind == Enumerated {
		for raw, name := range c.Values {
			if strings.ToLower(name) == t {
				return raw, nil
			}
		}
	}

	if raw, ok := strings.CutPrefix(t, "0x"); ok {
		n, err := strconv.ParseUint(raw, 16, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q for %s", token, c.Label())
		}
		return uint32(n), nil
	}

	n, err := strconv.ParseUint(t, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q for %s", token, c.Label())
	}
	return uint32(n), nil
}

// Snapshot lists the features captured by profile save: brightness,
// contrast, input, volume, power.
func Snapshot() []Code {
	out := make([]Code, len(registry))
	copy(out, registry)
	return out
}
