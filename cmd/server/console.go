package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"multirpg/internal/services/admin"
	"multirpg/internal/services/session"
	"multirpg/internal/transport"
)

const (
	consoleNetwork  = "console"
	consoleChannel  = "#console"
	consoleNick     = "operator"
	consoleUserhost = "operator!local@console"
)

// runConsole reads command lines from stdin and feeds them through the
// same command path a chat connection would use. It exists for local
// operation: REGISTER an account, MKADMIN it from a migration, then drive
// the world with admin commands. Replies print to stdout; broadcasts go
// through the normal dispatch queues.
func runConsole(ctx context.Context, sess *session.Service, adm *admin.Service,
	registry *transport.Registry, logger *slog.Logger) {

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var reply string
		if admin.Handles(strings.Fields(line)[0]) {
			res := adm.HandleCommand(consoleNick, consoleNetwork, line)
			reply = res.Reply
			registry.RouteAll(res.Broadcasts)
		} else {
			res := sess.HandleCommand(consoleNick, consoleNetwork,
				consoleChannel, consoleUserhost, line)
			reply = res.Reply
			registry.RouteAll(res.Broadcasts)
		}
		if reply != "" {
			fmt.Println(reply)
		}
		registry.FlushAll(ctx)
	}

	if err := scanner.Err(); err != nil {
		logger.Warn("console closed", slog.String("error", err.Error()))
	}
}
