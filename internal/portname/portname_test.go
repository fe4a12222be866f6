package portname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"fc1/12":         "1/12",
		"FC1/3":          "1/3",
		"vfc2/1":         "2/1",
		"FC port 0/5":    "0/5",
		"port-channel 3": "pc3",
		"Port: 16":       "16",
		"port7":          "7",
		"4/12":           "4/12",
		" 12 ":           "12",
		"mgmt0":          "mgmt0",
		"":               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}
