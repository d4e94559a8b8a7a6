package ws

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/delitruck/delitruck-backend/internal/auth"
	"github.com/delitruck/delitruck-backend/internal/services"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

const userIDKey = "userID"

// inboundFrame is the envelope for all client-to-server messages.
// Latitude/longitude are pointers so a missing field is distinguishable
// from a zero coordinate.
type inboundFrame struct {
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	MessageType string   `json:"messageType"`
	TripID      string   `json:"tripId"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Timestamp   string   `json:"timestamp"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Handler wires the websocket endpoint: session handshake, the hub
// registry, and dispatch of chat and location frames.
type Handler struct {
	hub       *Hub
	chat      *services.ChatService
	locations *services.LocationService
	sessions  auth.Resolver
	tokens    *auth.TokenResolver
}

// NewHandler creates a new websocket handler
func NewHandler(hub *Hub, chat *services.ChatService, locations *services.LocationService, sessions auth.Resolver, tokens *auth.TokenResolver) *Handler {
	return &Handler{
		hub:       hub,
		chat:      chat,
		locations: locations,
		sessions:  sessions,
		tokens:    tokens,
	}
}

// Upgrade authenticates the handshake before the protocol switch. The
// resolved user ID rides into the socket handler via locals; an
// unresolved session leaves it unset so the socket is closed with an
// unauthorized code right after the upgrade completes.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if userID, err := h.authenticate(c); err == nil {
		c.Locals(userIDKey, userID)
	}
	return c.Next()
}

// authenticate tries the session cookie first, then a bearer token for
// clients that cannot carry cookies.
func (h *Handler) authenticate(c *fiber.Ctx) (string, error) {
	if userID, err := h.sessions.Resolve(c.Get(fiber.HeaderCookie)); err == nil {
		return userID, nil
	}
	if h.tokens != nil {
		if token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			return h.tokens.Verify(token)
		}
		if token := c.Query("token"); token != "" {
			return h.tokens.Verify(token)
		}
	}
	return "", auth.ErrUnauthenticated
}

// Serve returns the fiber handler running the connection loop.
func (h *Handler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(userIDKey).(string)
		if userID == "" {
			log.Println("WebSocket connection rejected: no valid session")
			closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Unauthorized")
			_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
			_ = conn.Close()
			return
		}

		client := h.hub.Register(userID, conn)
		log.Printf("User %s connected to WebSocket", userID)

		defer func() {
			h.hub.Unregister(client)
			_ = conn.Close()
			log.Printf("User %s disconnected from WebSocket", userID)
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			h.dispatch(client, userID, data)
		}
	})
}

func (h *Handler) dispatch(client *Client, userID string, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("WebSocket message error: %v", err)
		return
	}

	switch frame.Type {
	case "chat":
		if _, err := h.chat.Send(userID, frame.Content, frame.MessageType); err != nil {
			log.Printf("Error handling chat message: %v", err)
		}
	case "location_update":
		h.handleLocation(client, userID, frame)
	}
}

func (h *Handler) handleLocation(client *Client, userID string, frame inboundFrame) {
	if frame.TripID == "" || frame.Latitude == nil || frame.Longitude == nil || frame.Timestamp == "" {
		log.Println("Invalid location_update message: missing required fields")
		return
	}

	_, err := h.locations.Handle(userID, services.LocationUpdate{
		TripID:    frame.TripID,
		Latitude:  *frame.Latitude,
		Longitude: *frame.Longitude,
		Timestamp: frame.Timestamp,
	})
	if err == nil {
		return
	}

	// Authorization and not-found failures are replies to the sender
	// only, never broadcast.
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Printf("Trip not found for location update: %s", frame.TripID)
		h.reply(client, "Trip not found")
	case errors.Is(err, services.ErrNotTripDriver):
		log.Printf("Unauthorized location update attempt: user %s on trip %s", userID, frame.TripID)
		h.reply(client, "Unauthorized: You are not the assigned driver for this trip")
	default:
		log.Printf("Error processing location update: %v", err)
	}
}

func (h *Handler) reply(client *Client, message string) {
	payload, err := json.Marshal(errorFrame{Type: "error", Message: message})
	if err != nil {
		return
	}
	_ = client.Send(payload)
}
