package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
)

func TestConnRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(raw)
		defer conn.Close()

		action, data, err := conn.ReadMessage()
		if err != nil {
			conn.WriteError(response.ErrInvalidPayload, err.Error())
			return
		}
		if action != ActionPing {
			conn.WriteError(response.ErrInvalidPayload, "unexpected "+string(action)+" "+string(data))
			return
		}
		conn.WriteTyped(PongResponse{Event: EventPong})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.WriteJSON(map[string]string{"action": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got PongResponse
	if err := client.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Event != EventPong {
		t.Fatalf("event = %q, want pong", got.Event)
	}
}

func TestConnMalformedMessage(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(raw)
		defer conn.Close()
		if _, _, err := conn.ReadMessage(); err != nil {
			conn.WriteError(response.ErrInvalidPayload, "malformed message")
		}
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got ErrorResponse
	if err := client.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Event != EventError || got.Code != response.ErrInvalidPayload {
		t.Fatalf("got %+v", got)
	}
}
