package script_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangTung97/buddysim"
	"github.com/QuangTung97/buddysim/allocator"
	"github.com/QuangTung97/buddysim/script"
)

func TestRun(t *testing.T) {
	cmds, err := script.Parse(strings.NewReader(`
alloc P1 200
alloc P2 100
free P1
alloc P2 1
free P9
`))
	require.NoError(t, err)

	s := buddysim.NewSession(buddysim.SessionConfig{Capacity: 1000})
	results := script.Run(s, cmds)

	require.Equal(t, 5, len(results))
	assert.Equal(t, []bool{true, true, true, false, false}, []bool{
		results[0].OK, results[1].OK, results[2].OK, results[3].OK, results[4].OK,
	})
	assert.Equal(t, "process P1 assigned (256) [color 0]", results[0].Message)
	assert.Equal(t, `error: process "P2" already exists`, results[3].Message)
	assert.Equal(t, "process P9 not found", results[4].Message)

	assert.Equal(t, []allocator.Occupant{{Name: "P2", Size: 128, ColorID: 1}}, s.Allocator().ListOccupants())
}

func TestRun_Reset(t *testing.T) {
	cmds, err := script.Parse(strings.NewReader("alloc A 4\nreset 100\nalloc B 64\n"))
	require.NoError(t, err)

	s := buddysim.NewSession(buddysim.SessionConfig{Capacity: 8})
	results := script.Run(s, cmds)

	assert.True(t, results[1].OK)
	assert.Equal(t, "memory reinitialized and adjusted from 100 to 128 (power of two)", results[1].Message)
	assert.True(t, results[2].OK)
	assert.Equal(t, 128, s.Allocator().Capacity())
	assert.Equal(t, []allocator.Occupant{{Name: "B", Size: 64, ColorID: 0}}, s.Allocator().ListOccupants())
}
