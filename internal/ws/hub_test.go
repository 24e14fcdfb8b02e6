package ws

import "testing"

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient("10", nil, ConnInfo{ConnID: "c1", UserID: 1})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected room to be created")
	}
	if hub.RoomSize("10") != 1 {
		t.Fatalf("expected one connection in room")
	}

	hub.RemoveClient("10", nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected room to be removed")
	}
}

func TestHubRoomsAreIndependent(t *testing.T) {
	hub := NewHub()

	hub.AddClient("10", nil, ConnInfo{ConnID: "c1"})
	hub.AddClient("client-abc", nil, ConnInfo{ConnID: "c1"})

	hub.RemoveClient("10", nil)
	if hub.RoomSize("client-abc") != 1 {
		t.Fatalf("expected other room to survive")
	}
}

func TestHubRemoveClientUnknownRoom(t *testing.T) {
	hub := NewHub()

	hub.RemoveClient("missing", nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected no rooms")
	}
}
