package marketing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatchAsyncDeliversPayload(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event LeadEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("decode: %v", err)
		}
		got.Store(event)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, srv.Client(), nil, nil)
	d.DispatchAsync(LeadEvent{
		LeadsMkt: LeadRef{ID: 101},
		Name:     "Ana",
		Phone:    "5511987654321",
		Email:    "ana@example.com",
	})

	waitFor(t, func() bool { return got.Load() != nil })
	event := got.Load().(LeadEvent)
	if event.LeadsMkt.ID != 101 {
		t.Errorf("lead id = %d, want 101", event.LeadsMkt.ID)
	}
	if event.Phone != "5511987654321" {
		t.Errorf("phone = %q", event.Phone)
	}
}

func TestDispatchAsyncSwallowsServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, srv.Client(), nil, nil)
	d.DispatchAsync(LeadEvent{LeadsMkt: LeadRef{ID: 1}})

	waitFor(t, func() bool { return calls.Load() == 1 })
}

func TestDispatchAsyncDisabledWithoutURL(t *testing.T) {
	d := NewDispatcher("", nil, nil, nil)
	d.DispatchAsync(LeadEvent{LeadsMkt: LeadRef{ID: 1}})
}

func TestDispatchAsyncNilDispatcher(t *testing.T) {
	var d *Dispatcher
	d.DispatchAsync(LeadEvent{LeadsMkt: LeadRef{ID: 1}})
}
