package eventbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishNotVisibleUntilFlush(t *testing.T) {
	b := NewBus()
	b.Publish(Event{Type: "tick"})
	require.Empty(t, b.Readable())

	b.Flush()
	require.Len(t, b.Readable(), 1)
}

func TestSubscribeFiresOnFlush(t *testing.T) {
	b := NewBus()
	var got []Event
	b.Subscribe("tick", func(e Event) { got = append(got, e) })
	b.Publish(Event{Type: "tick", Payload: 1})
	b.Publish(Event{Type: "other", Payload: 2})
	b.Flush()

	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].Payload)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	var count int
	id := b.Subscribe("", func(e Event) { count++ })
	b.Publish(Event{Type: "x"})
	b.Flush()
	require.Equal(t, 1, count)

	b.Unsubscribe(id)
	b.Publish(Event{Type: "x"})
	b.Flush()
	require.Equal(t, 1, count)
}

func TestDrainSurvivesSubsequentEmptyFlushes(t *testing.T) {
	b := NewBus()
	b.Publish(Event{Type: "job_completed"})
	b.Flush()

	for i := 0; i < 8; i++ {
		b.Flush()
	}

	drained := b.Drain("job_completed")
	require.Len(t, drained, 1)
	require.Empty(t, b.Drain("job_completed"))
}

func TestRestrictedJobBusRejectsUnknownType(t *testing.T) {
	ns := NewNamespaces()
	err := ns.Jobs.Publish(Event{Type: "job_completed"})
	require.NoError(t, err)

	err = ns.Jobs.Publish(Event{Type: "not_a_job_event"})
	require.Error(t, err)
}
