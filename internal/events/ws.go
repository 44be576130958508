package events

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameHostOrigin,
}

// sameHostOrigin admits non-browser clients (no Origin header) and browser
// connections coming from the host serving the API. Cross-site pages are
// refused.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// WSHandler upgrades the connection, registers it with the hub and drains
// the socket until the client goes away. Events flow one way, hub to
// client; inbound frames are discarded.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[events] ws upgrade failed: %v", err)
			return
		}

		hub.Add(conn)
		defer hub.Remove(conn)
		log.Printf("[events] ws client connected (%d total)", hub.Stats().WSClients)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Println("[events] ws client disconnected")
				return
			}
		}
	}
}
