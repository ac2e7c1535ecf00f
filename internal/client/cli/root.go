package cli

import (
	"bufio"
	"context"
	"strings"
)

func (a *App) getStatus() string {
	snap := a.session.Current()
	if snap.Authenticated && snap.User != nil {
		return "(" + snap.User.Username + ") "
	}
	return ""
}

func (a *App) printHelp() {
	if a.session.IsAuthenticated() {
		a.println("Available commands: upload <file>, cv, jobs [cvID], fav <n>, whoami, logout, exit")
	} else {
		a.println("Available commands: register, login, exit")
	}
}

// Root runs the interactive command loop until the user exits or input ends.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to cvadvisor (type 'help' for commands)")
	scanner := bufio.NewScanner(a.reader)

	for {
		a.printf("cv %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.printHelp()
		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "whoami":
			a.Whoami(ctx)
		case "upload":
			if len(args) == 0 {
				a.println("Usage: upload <file>")
				continue
			}
			a.requireAuth(ctx, func(ctx context.Context) error {
				return a.Upload(ctx, strings.Join(args, " "))
			})
		case "cv":
			a.requireAuth(ctx, a.CVForm)
		case "jobs":
			cvID := a.lastCVID
			if len(args) > 0 {
				cvID = args[0]
			}
			a.requireAuth(ctx, func(ctx context.Context) error {
				return a.Jobs(ctx, cvID)
			})
		case "fav":
			if len(args) == 0 {
				a.println("Usage: fav <n>")
				continue
			}
			a.requireAuth(ctx, func(ctx context.Context) error {
				return a.Favorite(ctx, args[0])
			})
		case "exit", "quit":
			a.println("Bye!")
			return
		default:
			a.println("Unknown command:", cmd)
		}
	}
}
