package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedSendDeliversToAllSubscribers(t *testing.T) {
	var f Feed
	c1 := make(chan int, 1)
	c2 := make(chan int, 1)
	s1 := f.Subscribe(c1)
	s2 := f.Subscribe(c2)
	defer s1.Unsubscribe()
	defer s2.Unsubscribe()

	n := f.Send(42)
	require.Equal(t, 2, n)
	assert.Equal(t, 42, <-c1)
	assert.Equal(t, 42, <-c2)
}

func TestFeedUnsubscribeStopsDelivery(t *testing.T) {
	var f Feed
	c1 := make(chan int, 1)
	s1 := f.Subscribe(c1)
	s1.Unsubscribe()

	n := f.Send(1)
	assert.Equal(t, 0, n)
}

func TestFeedTypeMismatchPanics(t *testing.T) {
	var f Feed
	f.Send(2)
	assert.Panics(t, func() {
		f.Send("not an int")
	})
}
