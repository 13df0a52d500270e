package handlers

import (
	ws "github.com/edusphere/admissions_backend/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// WebsocketUpgrade gates the admin event stream behind the usual
// websocket handshake check.
func WebsocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// AdminEventStream keeps an admin dashboard connected to the workflow
// event hub until the socket closes.
var AdminEventStream = websocket.New(func(conn *websocket.Conn) {
	userID, err := uuid.Parse(conn.Params("userId"))
	if err != nil {
		conn.Close()
		return
	}

	client := &ws.Client{UserID: userID, Conn: conn}
	ws.Register <- client
	defer func() {
		ws.Unregister <- client
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
})
