package client

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"line-chat/domain"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// fakeServer answers a scripted conversation on the other end of a pipe.
func fakeServer(t *testing.T, conn net.Conn, script func(r *bufio.Reader, w io.Writer)) <-chan struct{} {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()
		script(bufio.NewReader(conn), conn)
	}()
	return done
}

func runClient(t *testing.T, ctx context.Context, conn net.Conn, in io.Reader, colours bool) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(logs.GetLoggerFromLevel(slog.LevelDebug), conn, in, &out, colours)
	errChan := make(chan error, 1)
	go func() { errChan <- c.Run(ctx) }()
	select {
	case err := <-errChan:
		return out.String(), err
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop")
		return "", nil
	}
}

func TestClient_ForwardsLinesUntilQuitAcknowledged(t *testing.T) {
	req := require.New(t)
	local, remote := net.Pipe()
	received := make(chan string, 2)

	// Given a server echoing the chat line then acknowledging the quit
	done := fakeServer(t, remote, func(r *bufio.Reader, w io.Writer) {
		_, _ = io.WriteString(w, domain.WelcomeNotice+"\n")
		line, _ := r.ReadString('\n')
		received <- line
		_, _ = io.WriteString(w, "alice: hello\n")
		line, _ = r.ReadString('\n')
		received <- line
		_, _ = io.WriteString(w, domain.QuitNotice+"\n")
	})

	// When the user types a line then quits
	out, err := runClient(t, context.Background(), local, strings.NewReader("hello\nquit\n"), false)

	// Then both lines were sent and the server lines printed, quit excluded
	req.NoError(err)
	req.Equal("hello\n", <-received)
	req.Equal("quit\n", <-received)
	req.Equal("Welcome to chat\nalice: hello\n", out)
	<-done
}

func TestClient_EndOfInputSendsQuit(t *testing.T) {
	req := require.New(t)
	local, remote := net.Pipe()
	received := make(chan string, 1)

	done := fakeServer(t, remote, func(r *bufio.Reader, _ io.Writer) {
		line, _ := r.ReadString('\n')
		received <- line
	})

	_, err := runClient(t, context.Background(), local, strings.NewReader(""), false)

	req.NoError(err)
	req.Equal("quit\n", <-received)
	<-done
}

func TestClient_StopsOnCancel(t *testing.T) {
	req := require.New(t)
	local, remote := net.Pipe()
	defer remote.Close()
	input, _ := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runClient(t, ctx, local, input, false)

	req.NoError(err)
}

func TestClient_Render(t *testing.T) {
	req := require.New(t)
	c := New(logs.GetLoggerFromLevel(slog.LevelDebug), nil, nil, nil, true)

	req.Contains(c.render("private message from bob: hi"), "private message from bob: hi")
	req.Contains(c.render(domain.BannedNotice), domain.BannedNotice)
	req.Equal("alice: hi", c.render("alice: hi"))
	req.True(isNotice("No user with nickname: bob"))
	req.False(isNotice("alice: No user with nickname: bob"))
}
