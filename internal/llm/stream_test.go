package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDeliversAllDeltas(t *testing.T) {
	stream, producer := NewStream()

	go func() {
		producer.Send("a")
		producer.Send("b")
		producer.Send("c")
		producer.CloseSend(nil)
	}()

	var got string
	for stream.Next() {
		got += stream.Current()
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, "abc", got)
}

func TestStreamSurfacesTerminalError(t *testing.T) {
	streamErr := errors.New("connection reset")
	stream, producer := NewStream()

	go func() {
		producer.Send("partial")
		producer.CloseSend(streamErr)
	}()

	for stream.Next() {
	}
	assert.ErrorIs(t, stream.Err(), streamErr)
}

func TestStreamCloseUnblocksProducer(t *testing.T) {
	stream, producer := NewStream()

	done := make(chan struct{})
	go func() {
		// Without a consumer, Send blocks until Close abandons the stream.
		producer.Send("never read")
		producer.Send("also never read")
		producer.CloseSend(nil)
		close(done)
	}()

	stream.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer still blocked after Close")
	}
}

func TestStreamEmpty(t *testing.T) {
	stream, producer := NewStream()
	producer.CloseSend(nil)

	assert.False(t, stream.Next())
	require.NoError(t, stream.Err())
}
