package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeToMinutes(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"00:00", 0, true},
		{"9:30", 570, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"14:00:00", 840, true},
		{"", 0, false},
		{"0930", 0, false},
		{"9:3", 0, false},
		{"aa:bb", 0, false},
		{":30", 0, false},
		{"9:", 0, false},
		{"undefined", 0, false},
		{" 09:30", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimeToMinutes(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatTime12h(t *testing.T) {
	assert.Equal(t, "12:00 AM", FormatTime12h("00:00"))
	assert.Equal(t, "9:05 AM", FormatTime12h("09:05"))
	assert.Equal(t, "12:30 PM", FormatTime12h("12:30"))
	assert.Equal(t, "2:00 PM", FormatTime12h("14:00:00"))
	assert.Equal(t, "later", FormatTime12h("later"))
}
