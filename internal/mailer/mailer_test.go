package mailer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/amiyamandal-dev/inkwell/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "non digit in %q", code)
		}
	}
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("a@x.io", "b@y.io", "Hi", "line1\nline2"))
	assert.True(t, strings.HasPrefix(msg, "From: a@x.io\r\nTo: b@y.io\r\nSubject: Hi\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline1\r\nline2"))
}

func TestVerificationBody(t *testing.T) {
	body := VerificationBody("123456", 5*time.Minute)
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "5 minutes")
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(logger.NewNop())
	assert.NoError(t, m.Send(context.Background(), "b@y.io", "Hi", "body"))
}
