package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:51234"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")

	assert.Equal(t, "203.0.113.9", RealClientIP(r))

	r.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", RealClientIP(r))
}

func TestDigestIsStableAndOpaque(t *testing.T) {
	a := Digest("203.0.113.9")
	assert.Len(t, a, 16)
	assert.Equal(t, a, Digest("203.0.113.9"))
	assert.NotEqual(t, a, Digest("203.0.113.10"))
	assert.NotContains(t, a, "203")
}
