package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"make24/core"
)

func TestSinkPostsEvent(t *testing.T) {
	var got core.Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
	}))
	defer server.Close()

	sink := New([]string{server.URL})
	sink.OnEvent(core.NewScoreUpdate("alice", 1, 5, []core.RankEntry{{Username: "alice", Score: 5}}))

	if got.Username != "alice" || got.Score != 5 {
		t.Fatalf("unexpected delivery: %+v", got)
	}
}

func TestSinkFailingEndpointDoesNotBlockOthers(t *testing.T) {
	var delivered atomic.Int32
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered.Add(1)
	}))
	defer ok.Close()

	sink := New([]string{"http://127.0.0.1:1/dead", ok.URL})
	sink.OnEvent(core.NewScoreUpdate("bob", 1, 1, nil))

	if delivered.Load() != 1 {
		t.Fatal("healthy endpoint must still receive the event")
	}
}

func TestSinkNoEndpoints(t *testing.T) {
	sink := New(nil)
	sink.OnEvent(core.NewScoreUpdate("carol", 1, 1, nil)) // must not panic
}
