package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-a", ":8080", "-d", "postgres://x"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a", ":8080"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--address=:9090", "-d", "postgres://x"},
			allowedFlags: []string{"-a", "--address"},
			want:         []string{"--address=:9090"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-a"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-a"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a"},
		},
		{
			name:         "next dash-starting token is not a value",
			args:         []string{"-a", "-d"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a"},
		},
		{
			name:         "multiple allowed flags preserve order",
			args:         []string{"-d", "dsn", "-a", ":8080", "--other", "x"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-d", "dsn", "-a", ":8080"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-a"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			assert.Equal(t, tt.want, got)
		})
	}
}
