package jsonlogic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	assert.Equal(t, 6.0, Sum(1, []any{2.0, json.Number("3")}))
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 0.0, Sum())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.35, Round(2.345, 2))
	assert.Equal(t, 3.0, Round(2.5))
	assert.Equal(t, -3.0, Round(-2.5, 0))
	assert.Equal(t, 0.0, Round())
}

func TestAllocate(t *testing.T) {
	assert.Equal(t, 25.0, Allocate(100, 4))
	assert.Equal(t, 0.0, Allocate(100, 0))
	assert.Equal(t, []any{25.0, 75.0}, Allocate(100.0, []any{1, 3}))
	assert.Equal(t, []any{0.0, 0.0}, Allocate(100.0, []any{0, 0}))
	assert.Equal(t, 0.0, Allocate(100))
}

func TestOperators(t *testing.T) {
	ops := Operators()
	assert.Contains(t, ops, "round")
	assert.Contains(t, ops, "allocate")
	assert.Contains(t, ops, "sum")
}
