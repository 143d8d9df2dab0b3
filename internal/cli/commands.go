package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var players []Player
			if err := client.Get("/api/players", &players); err != nil {
				return err
			}
			if limit > 0 && len(players) > limit {
				players = players[:limit]
			}
			NewOutput(cfg.Output).Print(players)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of players to show, 0 for all")

	return cmd
}

func newPlayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <name>",
		Short: "Show a single player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p Player
			if err := client.Get("/api/players/"+url.PathEscape(args[0]), &p); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(p)
			return nil
		},
	}
}

func newOnlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "online",
		Short: "List players currently online",
		RunE: func(cmd *cobra.Command, args []string) error {
			var players []Player
			if err := client.Get("/api/online", &players); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(players)
			return nil
		},
	}
}

func newQuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quest",
		Short: "Show the active quest",
		RunE: func(cmd *cobra.Command, args []string) error {
			var q Quest
			if err := client.Get("/api/quest", &q); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(q)
			return nil
		},
	}
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the world state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var s WorldState
			if err := client.Get("/api/state", &s); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(s)
			return nil
		},
	}
}

func newEventsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var events []Event
			path := "/api/events?limit=" + strconv.Itoa(limit)
			if err := client.Get(path, &events); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(events)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show")

	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult
			if err := client.Get("/healthz", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
