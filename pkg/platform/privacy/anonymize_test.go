package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"192.168.1.47", "192.168.1.0"},
		{"10.0.0.0", "10.0.0.0"},
		{"172.16.50.255", "172.16.50.0"},
		{"::ffff:192.168.1.47", "192.168.1.0"},
		{"2001:db8:85a3:0000:0000:8a2e:0370:7334", "2001:db8:85a3::"},
		{"2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3::"},
		{"::1", "::"},
		{"fe80::1%eth0", "fe80::"},
		{"", "unknown"},
		{"unknown", "unknown"},
		{"not-an-ip", "invalid"},
		{"192.168.1", "invalid"},
		{"192.168.1.1:8080", "invalid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnonymizeIP(tt.input), tt.input)
	}
}

func TestAnonymizeIP_GroupsByNetwork(t *testing.T) {
	for _, ip := range []string{"192.168.1.1", "192.168.1.100", "192.168.1.255"} {
		assert.Equal(t, "192.168.1.0", AnonymizeIP(ip))
	}
	assert.NotEqual(t, AnonymizeIP("192.168.1.47"), AnonymizeIP("192.168.2.47"))
}
