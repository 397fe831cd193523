package sink

import (
	"bufio"
	"context"
	"line-chat/errors"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestConnSink_WritesLinesInOrder(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	defer client.Close()
	sink := NewConnSink(logs.GetLoggerFromLevel(slog.LevelDebug), server, 8, time.Second, time.Second)

	// Given three lines queued by the same goroutine
	for _, line := range []string{"one", "two", "three"} {
		req.NoError(sink.Send(context.Background(), line))
	}

	// Then the peer reads them in order, each newline terminated
	reader := bufio.NewReader(client)
	for _, want := range []string{"one\n", "two\n", "three\n"} {
		got, err := reader.ReadString('\n')
		req.NoError(err)
		req.Equal(want, got)
	}

	done := make(chan error, 1)
	go func() { done <- sink.Close() }()
	req.NoError(<-done)
}

func TestConnSink_CloseFlushesThenRejects(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	defer client.Close()
	sink := NewConnSink(logs.GetLoggerFromLevel(slog.LevelDebug), server, 8, time.Second, time.Second)

	req.NoError(sink.Send(context.Background(), "bye"))

	// When closing while the peer still reads
	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(client).ReadString('\n')
		lines <- line
	}()
	req.NoError(sink.Close())

	// Then the queued line was flushed and later sends fail
	req.Equal("bye\n", <-lines)
	req.ErrorIs(sink.Send(context.Background(), "late"), errors.ErrSinkClosed)
	req.NoError(sink.Close())
}

func TestConnSink_FullOutboxTimesOut(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	defer client.Close()
	sink := NewConnSink(logs.GetLoggerFromLevel(slog.LevelDebug), server, 1, 500*time.Millisecond, 20*time.Millisecond)

	// Given a peer that never reads, the writer blocks on the first line
	req.NoError(sink.Send(context.Background(), "first"))
	req.Eventually(func() bool {
		return sink.Send(context.Background(), "second") == nil
	}, time.Second, time.Millisecond)

	// When the outbox is full
	err := sink.Send(context.Background(), "third")

	// Then the line is dropped after the delivery timeout
	req.ErrorIs(err, errors.ErrDeliveryTimeout)
	req.NoError(sink.Close())
}
