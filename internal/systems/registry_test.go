package systems

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunAllFixedNativeOrderThenExternal(t *testing.T) {
	reg := NewRegistry()
	var order []string

	reg.Register(DeathsSystem, func() []error { order = append(order, DeathsSystem); return nil })
	reg.Register(JobSystem, func() []error { order = append(order, JobSystem); return nil })
	reg.Register("CustomSystem", func() []error { order = append(order, "CustomSystem"); return nil })
	reg.Register(TimeOfDaySystem, func() []error { order = append(order, TimeOfDaySystem); return nil })

	errs := reg.RunAll()
	require.Empty(t, errs)
	require.Equal(t, []string{JobSystem, DeathsSystem, TimeOfDaySystem, "CustomSystem"}, order)
}

func TestRunAllCollectsErrors(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	reg.Register(JobSystem, func() []error { return []error{boom} })
	reg.Register(DecaySystem, func() []error { return nil })

	errs := reg.RunAll()
	require.Equal(t, []error{boom}, errs)
}

func TestUnregisterRemovesSystem(t *testing.T) {
	reg := NewRegistry()
	ran := false
	reg.Register("CustomSystem", func() []error { ran = true; return nil })
	reg.Unregister("CustomSystem")
	reg.RunAll()
	require.False(t, ran)
}

func TestSetEnabledGatesRunAllButNotDirectGet(t *testing.T) {
	reg := NewRegistry()
	ran := false
	reg.Register(JobSystem, func() []error { ran = true; return nil })
	reg.SetEnabled(JobSystem, false)

	reg.RunAll()
	require.False(t, ran)

	sys, err := reg.Get(JobSystem)
	require.NoError(t, err)
	sys()
	require.True(t, ran)

	reg.SetEnabled(JobSystem, true)
	ran = false
	reg.RunAll()
	require.True(t, ran)
}
