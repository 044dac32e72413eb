package netws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMsgWindowAllow(t *testing.T) {
	var w msgWindow
	for i := 0; i < 5; i++ {
		assert.True(t, w.allow(5))
	}
	assert.False(t, w.allow(5))
}

func TestMsgWindowUnlimited(t *testing.T) {
	var w msgWindow
	for i := 0; i < 1000; i++ {
		assert.True(t, w.allow(0))
	}
}
