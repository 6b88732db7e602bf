package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestNewSubscriptionDeliversError(t *testing.T) {
	c := make(chan int)
	sub := NewSubscription(func(quit <-chan struct{}) error {
		for i := 0; i < 3; i++ {
			select {
			case c <- i:
			case <-quit:
				return nil
			}
		}
		return errBoom
	})

	for want := 0; want < 3; want++ {
		got := <-c
		require.Equal(t, want, got)
	}
	require.Equal(t, errBoom, <-sub.Err())
}

func TestNewSubscriptionUnsubscribeStopsProducer(t *testing.T) {
	started := make(chan struct{})
	sub := NewSubscription(func(quit <-chan struct{}) error {
		close(started)
		<-quit
		return nil
	})
	<-started
	sub.Unsubscribe()
	_, ok := <-sub.Err()
	require.False(t, ok)
}
