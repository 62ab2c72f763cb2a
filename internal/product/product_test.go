package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Product
		wantErr bool
	}{
		{"xml", XML, false},
		{"win32", Win32, false},
		{"amd64", Amd64, false},
		{"WIN32", Win32, false},
		{"  amd64 ", Amd64, false},
		{"", None, false},
		{"none", None, false},
		{"sparc", None, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "win32", Win32.String())
}

func TestAll_ExcludesNone(t *testing.T) {
	assert.NotContains(t, All(), None)
	assert.Len(t, All(), 3)
}
