package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case []Player:
		o.printPlayerList(v)
	case []Event:
		o.printEvents(v)
	case Quest:
		o.printQuest(v)
	case WorldState:
		o.printWorldState(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
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

// Event response type
type Event struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Quest response type
type Quest struct {
	Active   bool     `json:"active"`
	Questers []string `json:"questers,omitempty"`
	Type     int      `json:"type,omitempty"`
	Stage    int      `json:"stage,omitempty"`
	Text     string   `json:"text,omitempty"`
	Deadline string   `json:"deadline,omitempty"`
	Target   []int    `json:"target,omitempty"`
}

// WorldState response type
type WorldState struct {
	Paused   bool     `json:"paused"`
	Silent   int      `json:"silent"`
	Players  int      `json:"players"`
	Online   int      `json:"online"`
	Networks []string `json:"networks"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func formatDuration(secs int) string {
	d := time.Duration(secs) * time.Second
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d days, %02d:%02d:%02d", days, hours, mins, s)
}

func (o *Output) printPlayer(p Player) {
	status := "offline"
	if p.Online {
		status = "online"
	}
	fmt.Printf("%s, the level %d %s (%s)\n", p.Username, p.Level, p.Class, status)
	fmt.Printf("Network: %s\n", p.Network)
	fmt.Printf("Alignment: %s\n", p.Alignment)
	fmt.Printf("Next level in: %s\n", formatDuration(p.TTL))
	fmt.Printf("Position: (%d, %d)\n", p.X, p.Y)
	fmt.Printf("Item sum: %d\n", p.ItemSum)
	fmt.Printf("Idle time: %s\n", formatDuration(p.IdleTotal))
}

func (o *Output) printPlayerList(players []Player) {
	if len(players) == 0 {
		fmt.Println("No players.")
		return
	}
	for i, p := range players {
		status := ""
		if !p.Online {
			status = " [offline]"
		}
		fmt.Printf("%2d. %s, the level %d %s, next level in %s%s\n",
			i+1, p.Username, p.Level, p.Class, formatDuration(p.TTL), status)
	}
}

func (o *Output) printEvents(events []Event) {
	if len(events) == 0 {
		fmt.Println("No events.")
		return
	}
	for _, ev := range events {
		fmt.Printf("[%s] %-11s %s\n",
			ev.CreatedAt.Local().Format("2006-01-02 15:04:05"), ev.Kind, ev.Message)
	}
}

func (o *Output) printQuest(q Quest) {
	if !q.Active {
		fmt.Println("There is no active quest.")
		return
	}
	fmt.Printf("Quest: %s\n", q.Text)
	fmt.Printf("Questers: %s\n", strings.Join(q.Questers, ", "))
	if q.Deadline != "" {
		fmt.Printf("Deadline: %s\n", q.Deadline)
	}
	if len(q.Target) == 2 {
		fmt.Printf("Heading to: (%d, %d), stage %d\n", q.Target[0], q.Target[1], q.Stage+1)
	}
}

func (o *Output) printWorldState(s WorldState) {
	paused := "running"
	if s.Paused {
		paused = "paused"
	}
	fmt.Printf("Game: %s\n", paused)
	fmt.Printf("Silent level: %d\n", s.Silent)
	fmt.Printf("Players: %d (%d online)\n", s.Players, s.Online)
	fmt.Printf("Networks: %s\n", strings.Join(s.Networks, ", "))
}
