package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("account", "90123456").Msg("account synced")

	out := buf.String()
	assert.Contains(t, out, `"account":"90123456"`)
	assert.Contains(t, out, "account synced")
}

func TestNop(t *testing.T) {
	// Must not panic and must not write anywhere.
	nop := Nop()
	nop.Error().Msg("dropped")
}
