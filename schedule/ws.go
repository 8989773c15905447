package schedule

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var (
	subscribers = make(map[string][]*websocket.Conn)
	subMu       sync.Mutex
)

// HandleWS lets a client wait on availability changes for one slot.
func HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("slotid")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	subMu.Lock()
	subscribers[slotID] = append(subscribers[slotID], conn)
	subMu.Unlock()

	for {
		// keep the connection until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	subMu.Lock()
	conns := subscribers[slotID]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers[slotID] = newList
	subMu.Unlock()

	conn.Close()
}

type wsMessage struct {
	Type   string `json:"type"`
	SlotID string `json:"slotid"`
}

func broadcastSlotUpdate(slotID string) {
	data, _ := json.Marshal(wsMessage{Type: "update", SlotID: slotID})

	subMu.Lock()
	defer subMu.Unlock()

	conns := subscribers[slotID]
	newList := conns[:0]
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}
	subscribers[slotID] = newList
}
