package dag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeStatus_String(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		status NodeStatus
		want   string
	}{
		"pending": {status: StatusPending, want: "Pending"},
		"active":  {status: StatusActive, want: "Active"},
		"skipped": {status: StatusSkipped, want: "Skipped"},
		"unknown": {status: NodeStatus(99), want: "Unknown"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestDependencyGraph_AddNode(t *testing.T) {
	t.Parallel()

	g := NewDependencyGraph()
	require.NoError(t, g.AddNode("typescript", nil))
	require.NoError(t, g.AddNode("prisma", []string{"typescript"}))

	err := g.AddNode("prisma", nil)
	require.ErrorIs(t, err, ErrDuplicateNode)

	node := g.GetNode("prisma")
	require.NotNil(t, node)
	assert.Equal(t, 1, node.Index)
	assert.Equal(t, []string{"typescript"}, node.Dependencies)
	assert.Equal(t, []string{"typescript", "prisma"}, g.Order())
	assert.Nil(t, g.GetNode("missing"))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		edges     []Edge
		wantErr   error
		wantSize  int
		wantRoots []string
	}{
		"empty": {
			edges:     nil,
			wantSize:  0,
			wantRoots: []string{},
		},
		"linear chain": {
			edges:     []Edge{{ID: "a"}, {ID: "b", DependsOn: []string{"a"}}, {ID: "c", DependsOn: []string{"b"}}},
			wantSize:  3,
			wantRoots: []string{"a"},
		},
		"multiple roots keep insertion order": {
			edges:     []Edge{{ID: "z"}, {ID: "a"}, {ID: "m", DependsOn: []string{"z", "a"}}},
			wantSize:  3,
			wantRoots: []string{"z", "a"},
		},
		"missing dependency": {
			edges:   []Edge{{ID: "a", DependsOn: []string{"ghost"}}},
			wantErr: ErrMissingDependency,
		},
		"duplicate id": {
			edges:   []Edge{{ID: "a"}, {ID: "a"}},
			wantErr: ErrDuplicateNode,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g, err := Build(tt.edges)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, g.Size())
			assert.Equal(t, tt.wantRoots, g.Roots())
		})
	}
}

func TestDependencyGraph_Dependents(t *testing.T) {
	t.Parallel()

	g, err := Build([]Edge{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"a"}},
		{ID: "d", DependsOn: []string{"b", "c"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "c"}, g.GetNode("a").Dependents)
	assert.Equal(t, []string{"d"}, g.GetNode("b").Dependents)
	assert.Empty(t, g.GetNode("d").Dependents)

	// Link is idempotent.
	require.NoError(t, g.Link())
	assert.Equal(t, []string{"b", "c"}, g.GetNode("a").Dependents)
}

func TestDependencyGraph_DetectCycle(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		edges    []Edge
		wantPath []string
	}{
		"no cycle in diamond": {
			edges: []Edge{
				{ID: "a"},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "c", DependsOn: []string{"a"}},
				{ID: "d", DependsOn: []string{"b", "c"}},
			},
		},
		"self loop": {
			edges:    []Edge{{ID: "a", DependsOn: []string{"a"}}},
			wantPath: []string{"a", "a"},
		},
		"two nodes": {
			edges:    []Edge{{ID: "a", DependsOn: []string{"b"}}, {ID: "b", DependsOn: []string{"a"}}},
			wantPath: []string{"a", "b", "a"},
		},
		"three nodes behind a root": {
			edges: []Edge{
				{ID: "root"},
				{ID: "x", DependsOn: []string{"root", "z"}},
				{ID: "y", DependsOn: []string{"x"}},
				{ID: "z", DependsOn: []string{"y"}},
			},
			wantPath: []string{"x", "z", "y", "x"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g := NewDependencyGraph()
			for _, e := range tt.edges {
				require.NoError(t, g.AddNode(e.ID, e.DependsOn))
			}

			err := g.DetectCycle()
			if tt.wantPath == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrCycle)
			var cycleErr *CycleError
			require.ErrorAs(t, err, &cycleErr)
			assert.Equal(t, tt.wantPath, cycleErr.Path)
			assert.Contains(t, err.Error(), "circular dependency detected")
		})
	}
}

func TestDependencyGraph_TopologicalOrder(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		edges []Edge
		want  []string
	}{
		"empty": {
			want: []string{},
		},
		"independent nodes keep insertion order": {
			edges: []Edge{{ID: "c"}, {ID: "a"}, {ID: "b"}},
			want:  []string{"c", "a", "b"},
		},
		"dependency declared later moves first": {
			edges: []Edge{{ID: "prisma", DependsOn: []string{"typescript"}}, {ID: "typescript"}},
			want:  []string{"typescript", "prisma"},
		},
		"ready node with lower index wins": {
			edges: []Edge{
				{ID: "a", DependsOn: []string{"d"}},
				{ID: "b"},
				{ID: "c", DependsOn: []string{"b"}},
				{ID: "d"},
			},
			want: []string{"b", "c", "d", "a"},
		},
		"diamond": {
			edges: []Edge{
				{ID: "d", DependsOn: []string{"b", "c"}},
				{ID: "c", DependsOn: []string{"a"}},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "a"},
			},
			want: []string{"a", "c", "b", "d"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g, err := Build(tt.edges)
			require.NoError(t, err)

			got, err := g.TopologicalOrder()
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TopologicalOrder() mismatch (-want +got):\n%s", diff)
			}

			again, err := g.TopologicalOrder()
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestDependencyGraph_TopologicalOrder_Cycle(t *testing.T) {
	t.Parallel()

	g := NewDependencyGraph()
	require.NoError(t, g.AddNode("a", []string{"b"}))
	require.NoError(t, g.AddNode("b", []string{"a"}))

	order, err := g.TopologicalOrder()
	require.ErrorIs(t, err, ErrCycle)
	assert.Nil(t, order)
}

func TestDependencyGraph_SetNodeStatus(t *testing.T) {
	t.Parallel()

	g, err := Build([]Edge{{ID: "a"}})
	require.NoError(t, err)

	require.NoError(t, g.SetNodeStatus("a", StatusActive))
	assert.Equal(t, StatusActive, g.GetNode("a").Status)

	err = g.SetNodeStatus("missing", StatusSkipped)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
