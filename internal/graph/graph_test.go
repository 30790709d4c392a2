package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochmaxence/peniche/pkg/types"
)

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name    string
		setup   [][2]string
		source  string
		target  string
		wantErr error
	}{
		{
			name:   "simple edge",
			source: "cli",
			target: "core",
		},
		{
			name:    "self edge rejected",
			source:  "core",
			target:  "core",
			wantErr: types.ErrSelfEdge,
		},
		{
			name:    "duplicate rejected",
			setup:   [][2]string{{"cli", "core"}},
			source:  "cli",
			target:  "core",
			wantErr: types.ErrDuplicateEdge,
		},
		{
			name:    "direct cycle rejected",
			setup:   [][2]string{{"cli", "core"}},
			source:  "core",
			target:  "cli",
			wantErr: types.ErrCycleDetected,
		},
		{
			name:    "transitive cycle rejected",
			setup:   [][2]string{{"cli", "api"}, {"api", "core"}},
			source:  "core",
			target:  "cli",
			wantErr: types.ErrCycleDetected,
		},
		{
			name:    "unknown source",
			source:  "ghost",
			target:  "core",
			wantErr: types.ErrCrateNotFound,
		},
		{
			name:    "unknown target",
			source:  "core",
			target:  "ghost",
			wantErr: types.ErrCrateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New([]string{"core", "cli", "api"})
			for _, e := range tt.setup {
				require.NoError(t, g.AddEdge(e[0], e[1], ""))
			}
			before := g.Edges()

			err := g.AddEdge(tt.source, tt.target, "")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, g.Edges(), "rejected edge must leave the graph unchanged")
			} else {
				assert.NoError(t, err)
				assert.True(t, g.HasEdge(tt.source, tt.target))
			}
		})
	}
}

func TestAddEdgeRejectionIsIdempotent(t *testing.T) {
	g := New([]string{"a", "b"})
	require.NoError(t, g.AddEdge("a", "b", ""))

	for i := 0; i < 3; i++ {
		err := g.AddEdge("b", "a", "")
		assert.ErrorIs(t, err, types.ErrCycleDetected)
	}
	assert.Equal(t, []Edge{{Source: "a", Target: "b"}}, g.Edges())
}

func TestRemoveEdge(t *testing.T) {
	g := New([]string{"cli", "core"})
	require.NoError(t, g.AddEdge("cli", "core", ""))

	require.NoError(t, g.RemoveEdge("cli", "core"))
	assert.False(t, g.HasEdge("cli", "core"))

	err := g.RemoveEdge("cli", "core")
	assert.ErrorIs(t, err, types.ErrEdgeNotFound)
}

func TestTopologicalOrder(t *testing.T) {
	g := New([]string{"cli", "core", "api", "util"})
	require.NoError(t, g.AddEdge("cli", "api", ""))
	require.NoError(t, g.AddEdge("cli", "core", ""))
	require.NoError(t, g.AddEdge("api", "core", ""))
	require.NoError(t, g.AddEdge("core", "util", ""))

	order, err := g.TopologicalOrder()
	require.NoError(t, err)

	assert.Len(t, order, 4)
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	for _, e := range g.Edges() {
		assert.Less(t, pos[e.Source], pos[e.Target], "%s must precede %s", e.Source, e.Target)
	}
}

func TestTopologicalOrderDeterministic(t *testing.T) {
	build := func() *Graph {
		g := New([]string{"b", "a", "c"})
		require.NoError(t, g.AddEdge("a", "c", ""))
		return g
	}

	first, err := build().TopologicalOrder()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := build().TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTopologicalOrderDetectsExternalCycle(t *testing.T) {
	// Simulate a hand-edited manifest introducing a loop behind the
	// graph's back.
	g := New([]string{"a", "b"})
	g.SetEdge("a", "b", "")
	g.SetEdge("b", "a", "")

	_, err := g.TopologicalOrder()
	assert.ErrorIs(t, err, types.ErrCycleDetected)
}

func TestDependents(t *testing.T) {
	g := New([]string{"cli", "api", "core"})
	require.NoError(t, g.AddEdge("cli", "core", ""))
	require.NoError(t, g.AddEdge("api", "core", ""))

	assert.Equal(t, []string{"api", "cli"}, g.Dependents("core"))
	assert.Empty(t, g.Dependents("cli"))
}

func TestRemoveNodeDropsEdges(t *testing.T) {
	g := New([]string{"cli", "core"})
	require.NoError(t, g.AddEdge("cli", "core", ""))

	g.RemoveNode("core")

	assert.False(t, g.HasNode("core"))
	assert.Empty(t, g.Edges())
}
