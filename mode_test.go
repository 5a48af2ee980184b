package termpix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "truecolor", want: Truecolor},
		{in: "HalfBlocks", want: Halfblocks},
		{in: "sixel", want: Sixel},
		{in: "kitty", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(tt.in), got.String())
		})
	}
}

func TestModeFlagValue(t *testing.T) {
	var m Mode
	require.NoError(t, m.Set("sixel"))
	assert.Equal(t, Sixel, m)
	assert.Equal(t, "mode", m.Type())
	assert.Error(t, m.Set("bogus"))
	assert.Equal(t, Sixel, m)
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
