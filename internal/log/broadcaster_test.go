package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster()
	a := b.Subscribe()
	c := b.Subscribe()
	assert.Equal(t, 2, b.SubscriberCount())

	line := []byte("level=INFO msg=hello\n")
	n, err := b.Write(line)
	assert.NoError(t, err)
	assert.Equal(t, len(line), n)

	// the writer may reuse its buffer
	line[0] = 'X'
	assert.Equal(t, "level=INFO msg=hello\n", string(<-a))
	assert.Equal(t, "level=INFO msg=hello\n", string(<-c))

	b.Unsubscribe(a)
	b.Unsubscribe(a)
	assert.Equal(t, 1, b.SubscriberCount())
	_, ok := <-a
	assert.False(t, ok)
}

func TestBroadcasterDropsForSlowSubscriber(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	for i := 0; i < defaultSubscriberBuffer+10; i++ {
		_, _ = b.Write([]byte("x\n"))
	}
	assert.Equal(t, defaultSubscriberBuffer, len(ch))
}
