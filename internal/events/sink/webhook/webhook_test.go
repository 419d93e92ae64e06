package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenhost/internal/events"
)

func TestDeliver(t *testing.T) {
	t.Run("posts the event with the kind header", func(t *testing.T) {
		var gotKind string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKind = r.Header.Get("X-Event-Kind")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		deliverer := New(time.Second)
		err := deliverer.Deliver(context.Background(), server.URL, events.Event{
			Kind:    events.KindTokenMoved,
			Payload: events.TokenMovedPayload{From: "alice", To: "bob", Qty: 30},
		})
		require.NoError(t, err)

		assert.Equal(t, "token.moved", gotKind)
		assert.Equal(t, "token.moved", gotBody["kind"])
	})

	t.Run("a non-2xx response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		deliverer := New(time.Second)
		err := deliverer.Deliver(context.Background(), server.URL, events.Event{Kind: events.KindTokenMoved})
		assert.Error(t, err)
	})

	t.Run("an unreachable endpoint is an error", func(t *testing.T) {
		deliverer := New(100 * time.Millisecond)
		err := deliverer.Deliver(context.Background(), "http://127.0.0.1:1", events.Event{Kind: events.KindTokenMoved})
		assert.Error(t, err)
	})
}
