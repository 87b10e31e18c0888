package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	ws "make24/adapters/websocket"
	"make24/core"
	"make24/engine"
	"make24/game"
	"make24/realtime"
)

// Minimal in-memory server for poking at the quiz pipeline with curl. No
// accounts, no durable storage: the player name comes straight from a query
// parameter and the session from a header.
func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	hub := realtime.NewHub()
	svc := game.New(
		game.WithRealtime(hub),
		game.WithDispatchMode(engine.DispatchAsync),
	)
	defer svc.Close()

	http.Handle("/ws", ws.Handler(hub))

	http.HandleFunc("/quiz", func(w http.ResponseWriter, r *http.Request) {
		challenge := svc.NewQuiz(sessionID(r))
		writeJSON(w, map[string]any{"numbers": challenge.Numbers()})
	})

	http.HandleFunc("/answer", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		// Anonymous play is allowed: an empty user still gets a verdict.
		user, _ := core.NormalizeUsername(core.Username(r.URL.Query().Get("user")))
		result, err := svc.SubmitAnswer(r.Context(), sessionID(r), user, r.URL.Query().Get("expr"))
		writeJSON(w, map[string]any{"is_correct": result.Correct, "result": result.Value, "err": errString(err)})
	})

	http.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Leaderboard(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, core.Ranked(entries))
	})

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get("X-Session"); id != "" {
		return id
	}
	return "demo"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func errString(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}
