// Package transport owns connection setup and line framing for the chat
// core: the TCP listener, the websocket upgrade, and the buffered outbound
// session built on top of either.
package transport

import (
	"bufio"
	"net"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// LineConn is one framed, bidirectional line stream. The serve loop and the
// session writer are written once against this interface; TCP and
// websocket connections are the two implementations.
type LineConn interface {
	ReadLine() (string, error)
	WriteLine(text string) error
	Close() error
}

type tcpConn struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

func newTCPConn(conn net.Conn) *tcpConn {
	return &tcpConn{conn: conn, reader: bufio.NewReader(conn)}
}

func (c *tcpConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *tcpConn) WriteLine(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.conn.Write([]byte(text + "\n"))
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) ReadLine() (string, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (c *wsConn) WriteLine(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
