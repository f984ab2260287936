package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/utils"
)

// Event types pushed to connected dashboards.
const (
	EventSessionUpdate   = "session_update"
	EventRecordUpdate    = "record_update"
	EventAlertUpdate     = "alert_update"
	EventDashboardUpdate = "dashboard_update"
	EventStaffNotif      = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected dashboard client (laborer, supervisor, admin)
// keyed by the role it authenticated with.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

var dashboardHub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	dashboardHub.mutex.Lock()
	defer dashboardHub.mutex.Unlock()
	dashboardHub.clients[conn] = role
}

// UnregisterClient removes and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	dashboardHub.mutex.Lock()
	defer dashboardHub.mutex.Unlock()
	delete(dashboardHub.clients, conn)
	conn.Close()
}

// BroadcastSessionUpdate pushes a changed OTP/QR session to all clients, so
// claim/recycle events refresh the session tables without a refetch loop.
func BroadcastSessionUpdate(session models.OtpSession) {
	broadcast(Message{
		Event: EventSessionUpdate,
		Data:  session,
	})
}

// BroadcastRecordUpdate pushes a created or reviewed cleaning record.
func BroadcastRecordUpdate(record models.CleaningRecord) {
	broadcast(Message{
		Event: EventRecordUpdate,
		Data:  record,
	})
}

// BroadcastAlertUpdate pushes a new or updated passenger alert.
func BroadcastAlertUpdate(alert models.Alert) {
	broadcast(Message{
		Event: EventAlertUpdate,
		Data:  alert,
	})
}

// BroadcastDashboardUpdate pushes recomputed dashboard aggregates to the
// admin and supervisor dashboards.
func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{
		Event: EventDashboardUpdate,
		Data:  data,
	}, models.RoleAdmin, models.RoleSupervisor)
}

// BroadcastStaffNotification pushes a plain-text notice to laborer clients
// only, so recycled sessions surface on the worker dashboard.
func BroadcastStaffNotification(message string) {
	broadcast(Message{
		Event: EventStaffNotif,
		Data:  message,
	}, models.RoleLaborer)
}

// broadcast sends msg to clients whose role is in roles. An empty roles list
// sends to every client.
func broadcast(msg Message, roles ...string) {
	dashboardHub.mutex.Lock()
	defer dashboardHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling hub message: %v", err)
		return
	}

	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	for conn, role := range dashboardHub.clients {
		if len(allowed) > 0 && !allowed[role] {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending hub message: %v", err)
			continue
		}
	}
}
