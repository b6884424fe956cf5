package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackBits(t *testing.T) {
	testCases := []struct {
		v    Vector
		want []byte
		desc string
	}{
		{Vector{1, 0, 1, 0}, []byte{0xA0}, "half_byte"},
		{Vector{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}, []byte{0x80, 0x01}, "two_bytes"},
		{Vector{1, 0, 1, 1, 0, 0, 0, 0, 1}, []byte{0xB0, 0x80}, "padded"},
		{Vector{}, []byte{}, "empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, PackBits(tc.v))
		})
	}
}
