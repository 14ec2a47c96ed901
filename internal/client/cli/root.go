package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Root runs the REPL until "exit"/"quit" or end of input.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintf(a.out, "Welcome to HobbyTracker CLI (%s), type 'help' for commands\n", a.config.ServerURL)

	for {
		fmt.Fprint(a.out, "htcli> ")

		line, err := a.reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(a.out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Available commands: register, user <id>, ping, exit")
		case "register":
			a.Register(ctx)
		case "user":
			a.ShowUser(ctx, args)
		case "ping":
			a.Ping(ctx)
		case "exit", "quit":
			return
		default:
			fmt.Fprintf(a.out, "Unknown command %q, type 'help'\n", cmd)
		}
	}
}

func (a *App) ShowUser(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: user <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "usage: user <id>")
		return
	}

	u, err := a.client.GetUser(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return
	}
	fmt.Fprintf(a.out, "User #%d (%s, %s)\n", u.ID, u.Username, u.Email)
}

func (a *App) Ping(ctx context.Context) {
	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, "Server unavailable:", err.Error())
		return
	}
	fmt.Fprintln(a.out, "Server is up")
}
