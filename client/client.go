// Package client is the companion line client of the chat server.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"line-chat/domain"
	"log/slog"
	"net"
	"strings"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `envconfig:"CHAT_SERVER_ADDR" default:"localhost:8888"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"INFO"`
	// CHAT_COLOURS highlights server notices and private messages
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// Client forwards typed lines to the server and prints what comes back.
type Client struct {
	log     *slog.Logger
	conn    net.Conn
	in      io.Reader
	out     io.Writer
	colours bool
}

func New(log *slog.Logger, conn net.Conn, in io.Reader, out io.Writer, colours bool) *Client {
	return &Client{log: log, conn: conn, in: in, out: out, colours: colours}
}

// Run returns when the server acknowledged the quit, closed the connection,
// or ctx was canceled.
func (c *Client) Run(ctx context.Context) error {
	sendErr := make(chan error, 1)
	recvErr := make(chan error, 1)
	go func() { sendErr <- c.send() }()
	go func() { recvErr <- c.receive() }()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("Shutting down!")
			_ = c.conn.Close()
			<-recvErr
			return nil
		case err := <-sendErr:
			if err != nil {
				_ = c.conn.Close()
				<-recvErr
				return fmt.Errorf("sending to server: %w", err)
			}
			// Keep reading until the server acknowledges the quit
			sendErr = nil
		case err := <-recvErr:
			_ = c.conn.Close()
			return err
		}
	}
}

// send forwards every input line. The end of the input is turned into a quit.
func (c *Client) send() error {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := scanner.Text()
		if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
			return err
		}
		if line == domain.QuitToken {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	_, err := io.WriteString(c.conn, domain.QuitToken+"\n")
	return err
}

func (c *Client) receive() error {
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == domain.QuitNotice {
			c.log.Debug("Server acknowledged quit")
			return nil
		}
		if _, err := fmt.Fprintln(c.out, c.render(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (c *Client) render(line string) string {
	if !c.colours {
		return line
	}
	switch {
	case strings.HasPrefix(line, "private message from "):
		return color.Magenta.Sprint(line)
	case strings.HasSuffix(line, " has left!"):
		return color.Gray.Sprint(line)
	case isNotice(line):
		return color.Yellow.Sprint(line)
	default:
		return line
	}
}

func isNotice(line string) bool {
	switch line {
	case domain.WelcomeNotice, domain.InvalidCommandNotice, domain.SelfTargetNotice,
		domain.RateLimitNotice, domain.BannedNotice:
		return true
	}
	return strings.HasPrefix(line, "Nickname changed to ") ||
		strings.HasPrefix(line, "No user with nickname: ")
}
