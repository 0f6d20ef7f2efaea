package floor

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/teampayal/cafe-pos/models"
	"github.com/teampayal/cafe-pos/utils"
)

// Event untuk floor page dan kitchen display
const (
	EventTableCreate  = "table_create"
	EventTableUpdate  = "table_update"
	EventTableDelete  = "table_delete"
	EventSessionOpen  = "session_open"
	EventSessionClose = "session_close"
	EventOrderCreate  = "order_create"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// FloorHub menampung koneksi staff yang memantau floor page secara
// real-time (status meja, session buka/tutup, order masuk).
type FloorHub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var floorHub = FloorHub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> menambahkan connection ke set dengan role
func RegisterClient(conn *websocket.Conn, role string) {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()
	floorHub.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()
	delete(floorHub.clients, conn)
	conn.Close()
}

// BroadcastTableUpdate -> status okupansi meja berubah
func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

// BroadcastSessionOpen -> meja baru di-seat
func BroadcastSessionOpen(session models.Session) {
	broadcast(Message{
		Event: EventSessionOpen,
		Data:  session,
	})
}

// BroadcastSessionClose -> session ditutup, meja kembali available
func BroadcastSessionClose(tableID uint, sessionID string) {
	broadcast(Message{
		Event: EventSessionClose,
		Data: map[string]interface{}{
			"table_id":   tableID,
			"session_id": sessionID,
		},
	})
}

// BroadcastOrderCreate -> order self-order masuk dari customer
func BroadcastOrderCreate(order models.Order) {
	broadcast(Message{
		Event: EventOrderCreate,
		Data:  order,
	})
}

// BroadcastMessage -> broadcast pesan umum
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling floor message: %v", err)
		return
	}

	for conn := range floorHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending floor message: %v", err)
			continue
		}
	}
}
