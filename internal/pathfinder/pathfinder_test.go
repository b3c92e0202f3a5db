package pathfinder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourceplane/simkernel/internal/mapindex"
)

func line(n int) *mapindex.Index {
	ix := mapindex.NewIndex()
	keys := make([]mapindex.CellKey, n)
	for i := 0; i < n; i++ {
		keys[i] = mapindex.NewSquareKey(i, 0, 0)
		ix.AddCell(keys[i], mapindex.CellMeta{Walkable: true})
	}
	for i := 0; i < n-1; i++ {
		ix.AddNeighbor(keys[i], keys[i+1])
		ix.AddNeighbor(keys[i+1], keys[i])
	}
	return ix
}

func TestFindPathStraightLine(t *testing.T) {
	ix := line(4)
	path, err := FindPath(ix, mapindex.NewSquareKey(0, 0, 0), mapindex.NewSquareKey(3, 0, 0), nil)
	require.NoError(t, err)
	require.Equal(t, []mapindex.CellKey{
		mapindex.NewSquareKey(0, 0, 0),
		mapindex.NewSquareKey(1, 0, 0),
		mapindex.NewSquareKey(2, 0, 0),
		mapindex.NewSquareKey(3, 0, 0),
	}, path)
}

func TestFindPathSameStartGoal(t *testing.T) {
	ix := line(2)
	path, err := FindPath(ix, mapindex.NewSquareKey(0, 0, 0), mapindex.NewSquareKey(0, 0, 0), nil)
	require.NoError(t, err)
	require.Equal(t, []mapindex.CellKey{mapindex.NewSquareKey(0, 0, 0)}, path)
}

func TestFindPathBlockedCell(t *testing.T) {
	ix := line(3)
	mid := mapindex.NewSquareKey(1, 0, 0)
	ix.AddCell(mid, mapindex.CellMeta{Walkable: false})

	_, err := FindPath(ix, mapindex.NewSquareKey(0, 0, 0), mapindex.NewSquareKey(2, 0, 0), nil)
	require.Error(t, err)
}

func TestFindPathUnwalkableEndpointRejected(t *testing.T) {
	ix := line(2)
	goal := mapindex.NewSquareKey(1, 0, 0)
	ix.AddCell(goal, mapindex.CellMeta{Walkable: false})

	_, err := FindPath(ix, mapindex.NewSquareKey(0, 0, 0), goal, nil)
	require.Error(t, err)
}

func TestFindPathPrefersLowerCost(t *testing.T) {
	ix := mapindex.NewIndex()
	a := mapindex.NewSquareKey(0, 0, 0)
	b := mapindex.NewSquareKey(1, 0, 0)
	c := mapindex.NewSquareKey(0, 1, 0)
	goal := mapindex.NewSquareKey(1, 1, 0)
	for _, k := range []mapindex.CellKey{a, b, c, goal} {
		ix.AddCell(k, mapindex.CellMeta{Walkable: true})
	}
	ix.AddNeighbor(a, b)
	ix.AddNeighbor(b, goal)
	ix.AddNeighbor(a, c)
	ix.AddNeighbor(c, goal)

	cost := func(from, to mapindex.CellKey) float64 {
		if from == c || to == c {
			return 5
		}
		return 1
	}

	path, err := FindPath(ix, a, goal, cost)
	require.NoError(t, err)
	require.Equal(t, []mapindex.CellKey{a, b, goal}, path)
}
