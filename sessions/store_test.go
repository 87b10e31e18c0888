package sessions

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEnsureCreatesAndReusesSession(t *testing.T) {
	m := NewManager(time.Hour)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	id := m.Ensure(w, r)
	if id == "" {
		t.Fatal("expected session id")
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected session cookie, got %#v", cookies)
	}

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookies[0])
	id2 := m.Ensure(httptest.NewRecorder(), r2)
	if id2 != id {
		t.Fatalf("expected reuse of %s, got %s", id, id2)
	}
}

func TestUsernameBinding(t *testing.T) {
	m := NewManager(time.Hour)
	w := httptest.NewRecorder()
	id := m.Ensure(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if u := m.Username(id); u != "" {
		t.Fatalf("fresh session should be anonymous, got %q", u)
	}
	m.SetUsername(id, "alice")
	if u := m.Username(id); u != "alice" {
		t.Fatalf("expected alice, got %q", u)
	}
}

func TestSweepDropsExpired(t *testing.T) {
	m := NewManager(time.Millisecond)
	id := m.Ensure(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	m.SetUsername(id, "bob")

	time.Sleep(5 * time.Millisecond)
	m.Sweep()

	if u := m.Username(id); u != "" {
		t.Fatalf("expired session should be gone, got %q", u)
	}
}

func TestOnEvictFiresForExpiredSessions(t *testing.T) {
	m := NewManager(time.Millisecond)
	var evicted []string
	m.OnEvict(func(id string) { evicted = append(evicted, id) })

	swept := m.Ensure(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	time.Sleep(5 * time.Millisecond)
	m.Sweep()
	if len(evicted) != 1 || evicted[0] != swept {
		t.Fatalf("expected sweep to evict %s, got %v", swept, evicted)
	}

	// Lazy expiry on the request path reports the eviction too.
	w := httptest.NewRecorder()
	stale := m.Ensure(w, httptest.NewRequest(http.MethodGet, "/", nil))
	time.Sleep(5 * time.Millisecond)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(w.Result().Cookies()[0])
	fresh := m.Ensure(httptest.NewRecorder(), r)
	if fresh == stale {
		t.Fatal("expired session must be replaced")
	}
	if len(evicted) != 2 || evicted[1] != stale {
		t.Fatalf("expected lazy eviction of %s, got %v", stale, evicted)
	}
}
