package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"multirpg/internal/model"
	"multirpg/internal/services/player"
	"multirpg/internal/world"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// playerResponse is the public view of a player: no credentials, no
// userhost
type playerResponse struct {
	Username  string `json:"username"`
	Network   string `json:"network"`
	Class     string `json:"class"`
	Alignment string `json:"alignment"`
	Online    bool   `json:"online"`
	Level     int    `json:"level"`
	TTL       int    `json:"ttl"`
	NextTTL   int    `json:"next_ttl"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	ItemSum   int    `json:"item_sum"`
	IdleTotal int    `json:"idle_total"`
}

type eventResponse struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type questResponse struct {
	Active   bool     `json:"active"`
	Questers []string `json:"questers,omitempty"`
	Type     int      `json:"type,omitempty"`
	Stage    int      `json:"stage,omitempty"`
	Text     string   `json:"text,omitempty"`
	Deadline string   `json:"deadline,omitempty"`
	Target   []int    `json:"target,omitempty"`
}

type stateResponse struct {
	Paused   bool     `json:"paused"`
	Silent   int      `json:"silent"`
	Players  int      `json:"players"`
	Online   int      `json:"online"`
	Networks []string `json:"networks"`
}

// handlers serves the read-only API
type handlers struct {
	store    *player.Service
	state    *world.State
	networks func() []string
}

func (h *handlers) toResponse(p *model.Player) playerResponse {
	sum, _ := h.store.ItemSum(p.ID)
	return playerResponse{
		Username:  p.Username,
		Network:   p.Network,
		Class:     p.Class,
		Alignment: string(p.Alignment),
		Online:    p.Online,
		Level:     p.Level,
		TTL:       p.TTL,
		NextTTL:   p.NextTTL,
		X:         p.X,
		Y:         p.Y,
		ItemSum:   sum,
		IdleTotal: p.IdleTotal,
	}
}

func (h *handlers) listPlayers(w http.ResponseWriter, _ *http.Request) {
	players := h.store.Snapshot()
	out := make([]playerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, h.toResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getPlayer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	p, err := h.store.GetByName(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no such player"})
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(p))
}

func (h *handlers) listOnline(w http.ResponseWriter, _ *http.Request) {
	players := h.store.OnlineSnapshot()
	out := make([]playerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, h.toResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	events := h.store.RecentEvents(limit)
	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, eventResponse{
			Kind:      string(ev.Kind),
			Message:   ev.Message,
			CreatedAt: ev.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getQuest(w http.ResponseWriter, _ *http.Request) {
	q := h.state.Quest()
	if q == nil {
		writeJSON(w, http.StatusOK, questResponse{Active: false})
		return
	}

	resp := questResponse{
		Active: true,
		Type:   int(q.Type),
		Stage:  q.Stage,
		Text:   q.Text,
	}
	for _, quester := range q.Questers {
		resp.Questers = append(resp.Questers, quester.Handle)
	}
	if q.Type == world.QuestTimed {
		resp.Deadline = q.Deadline.UTC().Format(time.RFC3339)
	} else {
		x, y := q.Target()
		resp.Target = []int{x, y}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse{
		Paused:   h.state.Paused(),
		Silent:   int(h.state.MuteLevel()),
		Players:  len(h.store.Snapshot()),
		Online:   len(h.store.OnlineSnapshot()),
		Networks: h.networks(),
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
