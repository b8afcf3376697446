package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ResolveSecret_GeneratesWhenEmpty(t *testing.T) {
	secret, err := resolveSecret("")
	assert.NoError(t, err)
	assert.Len(t, secret, 64)
}

func Test_ResolveSecret_RepeatsShortSecretToFloor(t *testing.T) {
	secret, err := resolveSecret("short")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(secret), 32)
}

func Test_ResolveSecret_RejectsOverlongSecret(t *testing.T) {
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	_, err := resolveSecret(string(long))
	assert.Error(t, err)
}

func Test_ExtractBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/compile", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", extractBearerToken(req))

	req2 := httptest.NewRequest(http.MethodPost, "/compile", nil)
	assert.Equal(t, "", extractBearerToken(req2))
}

func Test_ContentHash_IsStableAndDistinguishesInput(t *testing.T) {
	a := contentHash("network top() {}")
	b := contentHash("network top() {}")
	c := contentHash("network other() {}")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
