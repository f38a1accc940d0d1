package services

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/samber/lo"

	"github.com/palaver-im/palaver/pkg/internal/models"
)

// Live connection registry. Delivery is at-most-once: a write failure or a
// missing connection just drops the event, subscribers re-fetch the thread
// on reconnect.
var (
	wsMutex sync.Mutex
	wsConn  = make(map[uint][]*websocket.Conn)
)

func ClientRegister(user models.Account, conn *websocket.Conn) {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	wsConn[user.ID] = append(wsConn[user.ID], conn)
}

func ClientUnregister(user models.Account, conn *websocket.Conn) {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	wsConn[user.ID] = lo.Without(wsConn[user.ID], conn)
	if len(wsConn[user.ID]) == 0 {
		delete(wsConn, user.ID)
	}
}

func CheckOnline(userId uint) bool {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	return len(wsConn[userId]) > 0
}

// Pusher delivers one event to one user. Kept as a variable so another
// delivery transport can take over fan-out.
var Pusher = pushToConnections

// PushUser writes an event to every live connection of one user.
func PushUser(userId uint, event models.StreamEvent) {
	Pusher(userId, event)
}

// The mutex also serializes writes, which websocket connections require.
func pushToConnections(userId uint, event models.StreamEvent) {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	for _, conn := range wsConn[userId] {
		_ = conn.WriteMessage(websocket.TextMessage, event.Marshal())
	}
}

// ClientWrite sends a direct reply over one connection under the same write
// lock the fan-out path uses.
func ClientWrite(conn *websocket.Conn, event models.StreamEvent) error {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	return conn.WriteMessage(websocket.TextMessage, event.Marshal())
}

// Channel focus map: users currently viewing a channel skip the offline
// notification path for it.
var (
	focusInfo = make(map[uint]map[uint]bool)
	focusLock sync.Mutex
)

func CheckFocused(userId uint, channelId uint) bool {
	focusLock.Lock()
	defer focusLock.Unlock()
	return focusInfo[channelId][userId]
}

func FocusChannel(userId uint, channelId uint) {
	focusLock.Lock()
	defer focusLock.Unlock()
	if _, ok := focusInfo[channelId]; !ok {
		focusInfo[channelId] = make(map[uint]bool)
	}
	focusInfo[channelId][userId] = true
}

func UnfocusChannel(userId uint, channelId uint) {
	focusLock.Lock()
	defer focusLock.Unlock()
	if _, ok := focusInfo[channelId]; ok {
		delete(focusInfo[channelId], userId)
	}
}

func UnfocusAll(userId uint) {
	focusLock.Lock()
	defer focusLock.Unlock()
	for _, v := range focusInfo {
		delete(v, userId)
	}
}
