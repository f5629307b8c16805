package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_DefaultsToLoopback(t *testing.T) {
	flag := mcpCmd.Flags().Lookup("host")
	require.NotNil(t, flag)
	assert.Equal(t, "127.0.0.1", flag.DefValue)
}

func TestMCPListenAddr(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{"default host", "127.0.0.1", 8080, "127.0.0.1:8080"},
		{"empty host is loopback", "", 9000, "127.0.0.1:9000"},
		{"all interfaces on request", "0.0.0.0", 8080, "0.0.0.0:8080"},
		{"ipv6 loopback", "::1", 8080, "[::1]:8080"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mcpListenAddr(tc.host, tc.port))
		})
	}
}
