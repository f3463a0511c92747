package transport

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// WSHandler upgrades HTTP requests to websocket sessions speaking the same
// line protocol as the TCP clients: password line(s), display name line,
// then chat.
type WSHandler struct {
	log      *slog.Logger
	server   *Server
	upgrader websocket.Upgrader
}

func NewWSHandler(log *slog.Logger, server *Server) *WSHandler {
	return &WSHandler{
		log:    log,
		server: server,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	h.server.ServeConn(r.Context(), newWSConn(conn))
}
