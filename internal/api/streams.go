package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/pubsub"
)

// handleGroupStream upgrades to a WebSocket and relays group lifecycle events
// for one group. Only events published after the upgrade are delivered.
func (a *API) handleGroupStream(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["id"]
	if _, err := a.groups.GetGroup(r.Context(), groupID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "group_id", groupID, "error", err)
		return
	}

	relay(conn, a.pub.GroupStream(groupID), func(g *models.Group) any {
		return groupFromModel(g)
	})
}

// handleMemberStream relays member change events for one group.
func (a *API) handleMemberStream(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["id"]
	if _, err := a.groups.GetGroup(r.Context(), groupID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "group_id", groupID, "error", err)
		return
	}

	relay(conn, a.pub.MemberStream(groupID), func(m *models.GroupMember) any {
		return memberFromModel(m)
	})
}

// relay pumps stream events to the socket until either side goes away.
// The read pump exists only to observe the client closing.
func relay[T any](conn *websocket.Conn, sub *pubsub.Stream[T], encode func(T) any) {
	defer conn.Close()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.C():
			if !ok {
				return
			}
			if err := conn.WriteJSON(encode(event)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
