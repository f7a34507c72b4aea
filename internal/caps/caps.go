// Package caps parses the DDC/CI capabilities string monitors report: a
// nested parenthesized list of key(value) pairs with a vcp(...) section
// naming the supported feature codes and, optionally, their legal values.
package caps

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrParse is returned for absent or malformed capabilities strings.
// Callers are expected to degrade to "capabilities unknown" rather than
// fail the surrounding command.
var ErrParse = errors.New("capabilities parse error")

// Capabilities is one monitor's parsed capabilities report.
type Capabilities struct {
	Protocol    string             `json:"protocol,omitempty"`
	DisplayType string             `json:"type,omitempty"`
	Model       string             `json:"model,omitempty"`
	MCCSVersion string             `json:"mccs_version,omitempty"`
	Commands    []string           `json:"commands,omitempty"`
	Features    map[uint8][]uint32 `json:"features"`
	Raw         string             `json:"-"`
}

// Parse builds a Capabilities value from the raw monitor report. Unknown
// top-level keys are ignored. An empty report or one with no recognizable
// structure fails with ErrParse; partial reports parse to whatever was
// recognizable.
func Parse(raw string) (*Capabilities, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return nil, fmt.Errorf("%w: empty string", ErrParse)
	}

	// Strip one optional outer paren pair.
	if strings.HasPrefix(content, "(") && strings.HasSuffix(content, ")") {
		content = content[1 : len(content)-1]
	}

	caps := &Capabilities{
		Features: make(map[uint8][]uint32),
		Raw:      raw,
	}

	i := 0
	sawKey := false
	for i < len(content) {
		c := content[i]
		if !isWordByte(c) {
			i++
			continue
		}

		start := i
		for i < len(content) && isWordByte(content[i]) {
			i++
		}
		key := content[start:i]

		for i < len(content) && isSpaceByte(content[i]) {
			i++
		}
		if i >= len(content) || content[i] != '(' {
			// A bare word with no value group; skip it.
			continue
		}
		value, next := parenGroup(content, i)
		i = next
		sawKey = true

		switch key {
		case "prot":
			caps.Protocol = strings.TrimSpace(value)
		case "type":
			caps.DisplayType = strings.TrimSpace(value)
		case "model":
			caps.Model = strings.TrimSpace(value)
		case "mccs_ver":
			caps.MCCSVersion = strings.TrimSpace(value)
		case "cmds":
			caps.Commands = strings.Fields(value)
		case "vcp":
			parseVCPSection(value, caps.Features)
		}
	}

	if !sawKey {
		return nil, fmt.Errorf("%w: no key(value) groups found", ErrParse)
	}
	return caps, nil
}

// Supports reports whether the monitor lists the code in its vcp section.
func (c *Capabilities) Supports(code uint8) bool {
	_, ok := c.Features[code]
	return ok
}

// AllowedValues returns the explicit legal values for a code. A nil slice
// means the code accepts its full continuous range.
func (c *Capabilities) AllowedValues(code uint8) []uint32 {
	return c.Features[code]
}

// Codes returns the supported feature codes in ascending order.
func (c *Capabilities) Codes() []uint8 {
	out := make([]uint8, 0, len(c.Features))
	for code := range c.Features {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// parenGroup reads a balanced parenthesized group starting at the opening
// paren and returns its inner content and the index past the close. An
// unterminated group consumes to end of input.
func parenGroup(s string, open int) (string, int) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[open+1 : i], i + 1
			}
		}
	}
	return s[open+1:], len(s)
}

// parseVCPSection reads "10 12 60(01 11 12) 62 D6(01 04 05)" style content:
// hex codes, each optionally followed by a parenthesized legal value list.
func parseVCPSection(s string, features map[uint8][]uint32) {
	i := 0
	for i < len(s) {
		if !isHexByte(s[i]) {
			i++
			continue
		}

		start := i
		for i < len(s) && isHexByte(s[i]) {
			i++
		}
		code, err := strconv.ParseUint(s[start:i], 16, 8)
		if err != nil {
			// Hex run too long for a byte; drop it and move on.
			continue
		}

		for i < len(s) && isSpaceByte(s[i]) {
			i++
		}

		var values []uint32
		if i < len(s) && s[i] == '(' {
			inner, next := parenGroup(s, i)
			i = next
			for _, tok := range strings.Fields(inner) {
				if v, err := strconv.ParseUint(tok, 16, 16); err == nil {
					values = append(values, uint32(v))
				}
			}
		}

		features[uint8(code)] = values
	}
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isHexByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
