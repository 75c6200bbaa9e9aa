package redact_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/taskhub/internal/redact"
	"github.com/stretchr/testify/assert"
)

func TestRedactString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no sensitive data",
			input:    "task store unavailable",
			expected: "task store unavailable",
		},
		{
			name:     "password parameter",
			input:    "password=secret123 rejected",
			expected: "[REDACTED_CREDENTIAL] rejected",
		},
		{
			name:     "API key",
			input:    "api_key=abcdef1234567890 invalid",
			expected: "[REDACTED_KEY] invalid",
		},
		{
			name:     "email address",
			input:    "user alice@example.com not found",
			expected: "user [REDACTED_EMAIL] not found",
		},
		{
			name:     "unix path",
			input:    "open /etc/taskhub/config.yaml: permission denied",
			expected: "open [REDACTED_PATH]: permission denied",
		},
		{
			name:     "windows path",
			input:    `C:\Users\bob\config.yaml missing`,
			expected: "[REDACTED_PATH] missing",
		},
		{
			name:     "host and port",
			input:    "connect to db.example.com:5432 refused",
			expected: "connect to [REDACTED_HOST] refused",
		},
		{
			name:     "stack trace",
			input:    "crash: panic: runtime error\ngoroutine 1 [running]:\n\tmain.main()\n\t\t/app/main.go:12",
			expected: "crash: [STACK_TRACE_REDACTED]",
		},
		{
			name:     "several fragments",
			input:    "user bob@x.io at /var/data/users.db",
			expected: "user [REDACTED_EMAIL] at [REDACTED_PATH]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, redact.String(tc.input))
		})
	}
}

func TestRedactError(t *testing.T) {
	assert.Equal(t, "", redact.Error(nil))

	err := fmt.Errorf("lookup %s: %w", "bob@x.io", errors.New("timeout"))
	assert.Equal(t, "lookup [REDACTED_EMAIL]: timeout", redact.Error(err))
}
