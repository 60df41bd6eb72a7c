package scripting

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWithLimit_AbortsRunawayLoop(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()
	err := withLimit(L, 1000, func() error {
		return L.DoString(`while true do end`)
	})
	assert.Error(t, err)
	assert.Nil(t, L.Context(), "the limit is detached after the call")
}

func TestWithLimit_BudgetIsPerCall(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()
	require.NoError(t, L.DoString(`
		function count(n)
			local s = 0
			for i = 1, n do s = s + i end
			return s
		end
	`))
	call := func() error {
		return L.DoString(`assert(count(100) == 5050)`)
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, withLimit(L, 2000, call), "call %d", i)
	}

	require.Error(t, withLimit(L, 2000, func() error {
		return L.DoString(`count(100000)`)
	}))
	assert.NoError(t, withLimit(L, 2000, call), "an aborted call does not drain the next budget")
}

func TestWithLimit_SmallLoopsFitDefaultBudget_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(rt, "n")
		L := NewSandboxedState()
		defer L.Close()
		err := withLimit(L, DefaultInstructionLimit, func() error {
			return L.DoString(`local s = 0 for i = 1, ` + strconv.Itoa(n) + ` do s = s + i end`)
		})
		assert.NoError(rt, err)
	})
}
