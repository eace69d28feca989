package led

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smazurov/tf96ctl/internal/protocol"
)

func TestRGBToDeviceAllValues(t *testing.T) {
	for v := 0; v <= 255; v++ {
		want := uint8(math.Round(15 * float64(v) / 255))
		got := RGBToDevice(RGB{uint8(v), uint8(v), uint8(v)})
		assert.Equal(t, Triple{want, want, want}, got, "v=%d", v)
	}
}

func TestRGBToDeviceBoundaries(t *testing.T) {
	assert.Equal(t, Triple{0, 0, 0}, RGBToDevice(RGB{0, 0, 0}))
	assert.Equal(t, Triple{15, 15, 15}, RGBToDevice(RGB{255, 255, 255}))
	assert.Equal(t, Triple{15, 8, 0}, RGBToDevice(RGB{255, 128, 0}))
}

func TestDeviceToRGB(t *testing.T) {
	assert.Equal(t, RGB{0, 136, 255}, DeviceToRGB(Triple{0, 8, 15}))
	// above-range levels saturate
	assert.Equal(t, RGB{255, 255, 255}, DeviceToRGB(Triple{16, 200, 255}))
}

func TestColorRoundTripBounded(t *testing.T) {
	c := RGB{128, 64, 200}
	back := DeviceToRGB(RGBToDevice(c))
	assert.InDelta(t, 128, int(back.R), 8)
	assert.InDelta(t, 64, int(back.G), 8)
	assert.InDelta(t, 200, int(back.B), 8)

	for v := 0; v <= 255; v++ {
		back := DeviceToRGB(RGBToDevice(RGB{uint8(v), 0, 0}))
		assert.InDelta(t, v, int(back.R), 8, "v=%d", v)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
	}{
		{"#ff8000", RGB{255, 128, 0}},
		{"00aaFF", RGB{0, 170, 255}},
		{" #010203 ", RGB{1, 2, 3}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "#fff", "#gg0000", "#12345678"} {
		_, err := ParseHex(bad)
		assert.True(t, protocol.IsRange(err), bad)
	}
}

func TestRGBHex(t *testing.T) {
	assert.Equal(t, "#ff8000", RGB{255, 128, 0}.Hex())
	assert.Equal(t, "#000000", RGB{}.Hex())
}

func TestSelectGroups(t *testing.T) {
	all, err := SelectGroups("all")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	g, err := SelectGroups("LED1")
	require.NoError(t, err)
	require.Len(t, g, 1)
	assert.Equal(t, [3]int{2, 0, 1}, g[0].Ports())

	g, err = SelectGroups("signal")
	require.NoError(t, err)
	assert.Equal(t, [3]int{8, 9, 10}, g[0].Ports())

	_, err = SelectGroups("led9")
	assert.True(t, protocol.IsRange(err))
}

func TestGroupsReturnsCopy(t *testing.T) {
	g := Groups()
	g[0].Red = 99
	assert.Equal(t, 2, Groups()[0].Red)
}
