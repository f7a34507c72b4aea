package caps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dellReport = `(prot(monitor)type(LCD)model(P2419H)cmds(01 02 03 07 0C E3 F3)
vcp(02 04 05 08 10 12 14(05 08 09 0B) 16 18 1A 60(11 0F 12) 62 D6(01 04 05) DC(00 05))
mswhql(1)asset_eep(40)mccs_ver(2.1))`

func TestParseFullReport(t *testing.T) {
	c, err := Parse(dellReport)
	require.NoError(t, err)

	assert.Equal(t, "monitor", c.Protocol)
	assert.Equal(t, "LCD", c.DisplayType)
	assert.Equal(t, "P2419H", c.Model)
	assert.Equal(t, "2.1", c.MCCSVersion)
	assert.Equal(t, []string{"01", "02", "03", "07", "0C", "E3", "F3"}, c.Commands)

	assert.True(t, c.Supports(0x10))
	assert.True(t, c.Supports(0x60))
	assert.False(t, c.Supports(0xE1))

	// Restricted codes carry their value list; unrestricted ones are nil.
	assert.Equal(t, []uint32{0x11, 0x0F, 0x12}, c.AllowedValues(0x60))
	assert.Equal(t, []uint32{0x01, 0x04, 0x05}, c.AllowedValues(0xD6))
	assert.Nil(t, c.AllowedValues(0x10))
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	c, err := Parse("(mystery(abc)vcp(10 12))")
	require.NoError(t, err)
	assert.True(t, c.Supports(0x10))
	assert.True(t, c.Supports(0x12))
	assert.Len(t, c.Features, 2)
}

func TestParseWhitespaceAnywhere(t *testing.T) {
	c, err := Parse("(\n  vcp (10\n\t12  60 ( 11 0F ) )\n  model ( U2720Q )\n)")
	require.NoError(t, err)
	assert.Equal(t, "U2720Q", c.Model)
	assert.Equal(t, []uint8{0x10, 0x12, 0x60}, c.Codes())
	assert.Equal(t, []uint32{0x11, 0x0F}, c.AllowedValues(0x60))
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "()", "((((", ")))("} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrParse, "input %q", raw)
	}
}

func TestParseTotalOnGarbage(t *testing.T) {
	// None of these may panic; they either fail with ErrParse or yield a
	// capabilities value with whatever was recognizable.
	inputs := []string{
		"(vcp(",
		"(vcp(10 12",
		"(vcp(ZZZZ))",
		"(prot(monitor)vcp(10(01 02))",
		strings.Repeat("(", 500),
		"(vcp(FFFF 10))",
		"(model())",
	}
	for _, raw := range inputs {
		c, err := Parse(raw)
		if err != nil {
			assert.ErrorIs(t, err, ErrParse, "input %q", raw)
			continue
		}
		require.NotNil(t, c, "input %q", raw)
	}
}

func TestParseUnterminatedVCPStillUsable(t *testing.T) {
	c, err := Parse("(vcp(10 12 60(11")
	require.NoError(t, err)
	assert.True(t, c.Supports(0x10))
	assert.True(t, c.Supports(0x12))
	assert.True(t, c.Supports(0x60))
	assert.Equal(t, []uint32{0x11}, c.AllowedValues(0x60))
}

func TestCodesSorted(t *testing.T) {
	c, err := Parse("(vcp(D6 10 62 12 60))")
	require.NoError(t, err)
	assert.Equal(t, []uint8{0x10, 0x12, 0x60, 0x62, 0xD6}, c.Codes())
}
