package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// Event is pushed to every connected admin dashboard when the workflow
// does something a human should look at.
type Event struct {
	Type        string    `json:"type"`
	ApplicantID string    `json:"applicant_id"`
	Message     string    `json:"message"`
	At          time.Time `json:"at"`
}

const (
	EventApplicationSubmitted = "application_submitted"
	EventPaymentPending       = "payment_pending_verification"
	EventRewardClaimed        = "reward_claimed"
	EventApplicantEnrolled    = "applicant_enrolled"
)

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan Event, 64)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Admin dashboard connected: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Admin dashboard disconnected: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			var dead []uuid.UUID
			for userID, conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error pushing event to admin %s: %v", userID, err)
					conn.Close()
					dead = append(dead, userID)
				}
			}
			clientsMu.RUnlock()
			if len(dead) > 0 {
				clientsMu.Lock()
				for _, userID := range dead {
					delete(clients, userID)
				}
				clientsMu.Unlock()
			}
		}
	}
}

// NotifyAdmins queues an event without blocking the request path.
func NotifyAdmins(eventType string, applicantID uuid.UUID, message string) {
	event := Event{
		Type:        eventType,
		ApplicantID: applicantID.String(),
		Message:     message,
		At:          time.Now(),
	}
	select {
	case Broadcast <- event:
	default:
		log.Println("⚠️ Admin event channel full, dropping event")
	}
}
