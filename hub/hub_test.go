package hub_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swachhrail/coachclean-app/hub"
	"github.com/swachhrail/coachclean-app/models"
	"github.com/swachhrail/coachclean-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// dialTestClient opens a real websocket pair and registers the server side
// with the given role. It returns the client side for reading.
func dialTestClient(t *testing.T, role string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	registered := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.RegisterClient(conn, role)
		registered <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case serverConn := <-registered:
		t.Cleanup(func() { hub.UnregisterClient(serverConn) })
	case <-time.After(time.Second):
		t.Fatal("websocket client never registered")
	}

	return client
}

func readMessage(t *testing.T, conn *websocket.Conn) hub.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg hub.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestSessionUpdateReachesAllRoles(t *testing.T) {
	laborer := dialTestClient(t, models.RoleLaborer)
	admin := dialTestClient(t, models.RoleAdmin)

	hub.BroadcastSessionUpdate(models.OtpSession{OtpCode: "123456"})

	assert.Equal(t, hub.EventSessionUpdate, readMessage(t, laborer).Event)
	assert.Equal(t, hub.EventSessionUpdate, readMessage(t, admin).Event)
}

func TestStaffNotificationOnlyReachesLaborers(t *testing.T) {
	laborer := dialTestClient(t, models.RoleLaborer)
	admin := dialTestClient(t, models.RoleAdmin)

	hub.BroadcastStaffNotification("Session 7 is claimable again")

	msg := readMessage(t, laborer)
	assert.Equal(t, hub.EventStaffNotif, msg.Event)
	assert.Equal(t, "Session 7 is claimable again", msg.Data)

	require.NoError(t, admin.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := admin.ReadMessage()
	assert.Error(t, err, "admin clients should not receive staff notifications")
}

func TestDashboardUpdateSkipsLaborers(t *testing.T) {
	laborer := dialTestClient(t, models.RoleLaborer)
	supervisor := dialTestClient(t, models.RoleSupervisor)

	hub.BroadcastDashboardUpdate(map[string]interface{}{"changes": 3})

	assert.Equal(t, hub.EventDashboardUpdate, readMessage(t, supervisor).Event)

	require.NoError(t, laborer.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := laborer.ReadMessage()
	assert.Error(t, err, "laborer clients should not receive dashboard aggregates")
}
