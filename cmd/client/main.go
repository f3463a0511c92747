package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	env "github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:1234"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the connection lifecycle: password gate, display name, then
// a reader goroutine painting incoming lines while stdin feeds the server.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	conn, err := net.Dial("tcp", config.ServerAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerAddress, err)
	}
	defer func() { _ = conn.Close() }()

	stdin := bufio.NewScanner(os.Stdin)
	server := bufio.NewReader(conn)

	// Password gate: retry until the server answers OK.
	for {
		color.Cyan.Println("Server password:")
		if !stdin.Scan() {
			return exitOK, nil
		}
		if _, err := fmt.Fprintln(conn, stdin.Text()); err != nil {
			return exitRuntime, err
		}
		reply, err := server.ReadString('\n')
		if err != nil {
			return exitRuntime, fmt.Errorf("server closed during handshake: %w", err)
		}
		reply = strings.TrimSpace(reply)
		if reply == "OK" {
			break
		}
		color.Red.Println(reply)
	}

	color.Cyan.Println("Choose a display name:")
	if !stdin.Scan() {
		return exitOK, nil
	}
	if _, err := fmt.Fprintln(conn, stdin.Text()); err != nil {
		return exitRuntime, err
	}

	color.Green.Printf("Connected to %s! Type 'quit' to leave.\n", config.ServerAddress)

	// Reader goroutine paints server lines until the connection drops.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			line, err := server.ReadString('\n')
			if err != nil {
				return
			}
			paint(strings.TrimRight(line, "\r\n"))
		}
	}()

	for stdin.Scan() {
		text := stdin.Text()
		if _, err := fmt.Fprintln(conn, text); err != nil {
			break
		}
		if strings.EqualFold(strings.TrimSpace(text), "quit") {
			break
		}
	}

	_ = conn.Close()
	<-done
	color.Yellow.Println("Disconnected.")
	return exitOK, nil
}

// paint colors a server line by its prefix.
func paint(line string) {
	switch {
	case strings.HasPrefix(line, "SERVER:"):
		color.Yellow.Println(line)
	case strings.HasPrefix(line, "QUESTION:"),
		strings.HasPrefix(line, "GAME"),
		strings.HasPrefix(line, "CORRECT!"),
		strings.HasPrefix(line, "TIME'S UP!"),
		strings.HasPrefix(line, "CURRENT SCORES:"):
		color.Green.Println(line)
	default:
		fmt.Println(line)
	}
}
