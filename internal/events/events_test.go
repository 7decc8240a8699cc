package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversInOrderToMatchingType(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var got []string
	bus.Subscribe(CompilerFinished, func(e Event) { got = append(got, "first:"+e.Plugin) })
	bus.Subscribe(CompilerFinished, func(e Event) { got = append(got, "second:"+e.Plugin) })
	bus.Subscribe(AppStartupDone, func(Event) { got = append(got, "startup") })

	bus.Publish(Event{Type: CompilerFinished, Plugin: "shell"})

	assert.Equal(t, []string{"first:shell", "second:shell"}, got)
	assert.Equal(t, "compiler-finished", CompilerFinished.String())
}

func TestBus_SubscriberMaySubscribe(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	calls := 0
	bus.Subscribe(AppCmdLine, func(Event) {
		calls++
		bus.Subscribe(AppCmdLine, func(Event) { calls++ })
	})

	bus.Publish(Event{Type: AppCmdLine})
	assert.Equal(t, 1, calls)
	bus.Publish(Event{Type: AppCmdLine})
	assert.Equal(t, 3, calls)
}
