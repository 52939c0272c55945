package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockMinutes(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"09:00:00", 540, true},
		{"09:00", 540, true},
		{"00:00:00", 0, true},
		{"23:59:00", 1439, true},
		{"", 0, false},
		{"无效时间", 0, false},
		{"25:00:00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClockMinutes(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatClockMinutes(t *testing.T) {
	assert.Equal(t, "09:00", FormatClockMinutes(540))
	assert.Equal(t, "00:00", FormatClockMinutes(0))
	assert.Equal(t, "23:59", FormatClockMinutes(1439))
}

func TestValidateInterval(t *testing.T) {
	assert.NoError(t, ValidateInterval("09:00:00", "12:00:00"))
	// 零时长区间允许存在，重叠判定自然会忽略它
	assert.NoError(t, ValidateInterval("09:00:00", "09:00:00"))
	assert.Error(t, ValidateInterval("12:00:00", "09:00:00"))
	assert.Error(t, ValidateInterval("无效时间", "12:00:00"))
}
