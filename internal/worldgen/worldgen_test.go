package worldgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterListInvoke(t *testing.T) {
	table := NewTable()
	table.Register("flat_plains", func(args any) (any, error) { return "generated", nil })

	require.Equal(t, []string{"flat_plains"}, table.List())

	result, err := table.Invoke("flat_plains", nil)
	require.NoError(t, err)
	require.Equal(t, "generated", result)
}

func TestInvokeUnknownPlugin(t *testing.T) {
	table := NewTable()
	_, err := table.Invoke("missing", nil)
	require.Error(t, err)
}

func TestClearRemovesEverything(t *testing.T) {
	table := NewTable()
	table.Register("a", func(args any) (any, error) { return nil, nil })
	table.Clear()
	require.Empty(t, table.List())
}
