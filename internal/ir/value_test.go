package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueEqualNumber(t *testing.T) {
	assert.True(t, Number(5).Equal(Number(5)))
	assert.False(t, Number(5).Equal(Number(6)))
}

func TestValueEqualNaN(t *testing.T) {
	nan := Number(math.NaN())
	assert.False(t, nan.Equal(nan), "NaN must never equal itself")
}

func TestValueEqualKindMismatch(t *testing.T) {
	assert.False(t, Number(1).Equal(Bool(true)))
	assert.False(t, Null().Equal(Bool(false)))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "5", Number(5).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "null", Null().String())
}
