package callbacks

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallback_Delivery(t *testing.T) {
	c := New[int]()

	got := make(chan int, 10)

	c.Subscribe("a", func(msg int) bool {
		got <- msg

		return true
	})

	c.AddMessage(7)

	select {
	case v := <-got:
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestCallback_Unsubscribe(t *testing.T) {
	c := New[int]()

	var n atomic.Int32

	c.Subscribe("a", func(msg int) bool {
		n.Add(1)

		return true
	})

	require.True(t, c.Unsubscribe("a"))
	assert.False(t, c.Unsubscribe("a"))

	c.AddMessage(1)

	time.Sleep(time.Millisecond * 50)
	assert.Equal(t, int32(0), n.Load())
}

func TestCallback_SelfRemove(t *testing.T) {
	c := New[string]()

	var n atomic.Int32

	c.Subscribe("once", func(msg string) bool {
		n.Add(1)

		return false
	})

	c.AddMessage("x")

	assert.Eventually(t, func() bool {
		return n.Load() == 1
	}, time.Second, time.Millisecond*10)

	// subscriber dropped itself on the first message
	c.AddMessage("y")

	time.Sleep(time.Millisecond * 50)
	assert.Equal(t, int32(1), n.Load())
}
