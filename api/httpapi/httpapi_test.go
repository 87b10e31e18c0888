package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mem "make24/adapters/memory"
	"make24/core"
	"make24/engine"
	"make24/leaderboard"
	"make24/quiz"
	"make24/realtime"
	"make24/sessions"
)

type testEnv struct {
	handler    http.Handler
	challenges *quiz.Store
	scores     *mem.Store
	sess       *sessions.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	challenges := quiz.NewStore()
	board := leaderboard.NewSkipList()
	scores := mem.New()
	syncer := engine.NewSyncer(scores, time.Second, nil)
	bus := engine.NewEventBus(engine.DispatchSync)
	svc := engine.NewQuizService(challenges, board, syncer, bus, nil)
	t.Cleanup(svc.Close)
	sess := sessions.NewManager(time.Hour)
	handler := NewMux(svc, realtime.NewHub(), sess, scores, Options{})
	return &testEnv{handler: handler, challenges: challenges, scores: scores, sess: sess}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestQuizIssuesFourNumbers(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/quiz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Numbers []int `json:"numbers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Numbers) != 4 {
		t.Fatalf("expected 4 numbers, got %v", resp.Numbers)
	}
	for _, n := range resp.Numbers {
		if n < 1 || n > 9 {
			t.Fatalf("number out of range: %d", n)
		}
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected session cookie")
	}
}

func TestAnswerWithoutQuiz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/answer", `{"answer":"(1+2+3)*4"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no active quiz") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAnswerRoundTripScoresAuthenticatedUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/register", `{"username":"alice","password":"secret1"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/login", `{"username":"alice","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login must establish a session")
	}
	sessionID := cookies[0].Value

	rec = env.do(t, http.MethodGet, "/quiz", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("quiz: expected 200, got %d", rec.Code)
	}
	// Pin a solvable challenge for the session.
	env.challenges.Bind(sessionID, core.Challenge{1, 2, 3, 4})

	rec = env.do(t, http.MethodPost, "/answer", `{"answer":"(1+2+3)*4"}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status    string  `json:"status"`
		IsCorrect bool    `json:"is_correct"`
		Result    float64 `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.IsCorrect || resp.Result != 24 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rec = env.do(t, http.MethodGet, "/leaderboard", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d", rec.Code)
	}
	var lb struct {
		Leaderboard []core.RankEntry `json:"leaderboard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &lb); err != nil {
		t.Fatal(err)
	}
	if len(lb.Leaderboard) != 1 || lb.Leaderboard[0].Username != "alice" || lb.Leaderboard[0].Score != 1 {
		t.Fatalf("unexpected leaderboard: %#v", lb.Leaderboard)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/register", `{"username":"ab","password":"secret1"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short username: expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/register", `{"username":"bad name","password":"secret1"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad charset: expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/register", `{"username":"alice","password":"short"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short password: expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/register", `{"username":"alice","password":"secret1"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/register", `{"username":"alice","password":"secret1"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/register", `{"username":"alice","password":"secret1"}`, nil)

	rec := env.do(t, http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/login", `{"username":"nobody","password":"secret1"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/leaderboard", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var lb struct {
		Status      string           `json:"status"`
		Leaderboard []core.RankEntry `json:"leaderboard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &lb); err != nil {
		t.Fatal(err)
	}
	if lb.Status != "success" || len(lb.Leaderboard) != 0 {
		t.Fatalf("unexpected response: %+v", lb)
	}
}

func TestPathPrefix(t *testing.T) {
	challenges := quiz.NewStore()
	board := leaderboard.NewSkipList()
	scores := mem.New()
	syncer := engine.NewSyncer(scores, time.Second, nil)
	bus := engine.NewEventBus(engine.DispatchSync)
	svc := engine.NewQuizService(challenges, board, syncer, bus, nil)
	t.Cleanup(svc.Close)
	handler := NewMux(svc, nil, sessions.NewManager(time.Hour), scores, Options{PathPrefix: "/api"})

	req := httptest.NewRequest(http.MethodGet, "/api/quiz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 under prefix, got %d", rec.Code)
	}
}
