package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaller(t *testing.T) {
	anon := Anonymous()
	assert.False(t, anon.Present())
	assert.False(t, anon.Is(""))

	assert.False(t, Of("").Present())

	c := Of("a@b.com")
	assert.True(t, c.Present())
	assert.Equal(t, "a@b.com", c.Email())
	assert.True(t, c.Is("a@b.com"))
	assert.False(t, c.Is("A@b.com"))
}
