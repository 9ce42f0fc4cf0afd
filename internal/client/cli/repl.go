package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/agrisense/internal/client/client"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests provide a stub. Every command receives the words that followed
// its name.
type execIface interface {
	isLoggedIn() bool

	Login(ctx context.Context, args []string) error
	AdminLogin(ctx context.Context, args []string) error
	Signup(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Me(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error

	Dashboard(ctx context.Context, args []string) error
	Advisory(ctx context.Context, args []string) error
	Overview(ctx context.Context, args []string) error

	Feed(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Post(ctx context.Context, args []string) error
	Like(ctx context.Context, args []string) error
	Comments(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	Top(ctx context.Context, args []string) error
	Trending(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	MyPosts(ctx context.Context, args []string) error
	EditPost(ctx context.Context, args []string) error
	DeletePost(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: login, admin, signup, exit"
	helpLoggedIn  = "Available commands: me, profile, dashboard [crop], advisory <crop>, overview [crop], " +
		"feed [crop], search <text>, post, like <id>, comments <id>, comment <id>, top, trending, " +
		"upload <file>, myposts, editpost <id>, delpost <id>, logout, exit"
)

// errUsage is returned by commands called with missing or malformed
// arguments; its text is the usage line.
type errUsage string

func (e errUsage) Error() string { return "Usage: " + string(e) }

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// The prompt shows statusFn(). Failed commands print the user-facing
// message of the error (see client.Message); the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("agri %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "login":
			cmdErr = a.Login(ctx, args)
		case "admin":
			cmdErr = a.AdminLogin(ctx, args)
		case "signup", "register":
			cmdErr = a.Signup(ctx, args)
		case "logout":
			cmdErr = a.Logout(ctx, args)
		case "me":
			cmdErr = a.Me(ctx, args)
		case "profile":
			cmdErr = a.Profile(ctx, args)

		case "dashboard", "d":
			cmdErr = a.Dashboard(ctx, args)
		case "advisory":
			cmdErr = a.Advisory(ctx, args)
		case "overview":
			cmdErr = a.Overview(ctx, args)

		case "feed":
			cmdErr = a.Feed(ctx, args)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "post":
			cmdErr = a.Post(ctx, args)
		case "like":
			cmdErr = a.Like(ctx, args)
		case "comments":
			cmdErr = a.Comments(ctx, args)
		case "comment":
			cmdErr = a.Comment(ctx, args)
		case "top":
			cmdErr = a.Top(ctx, args)
		case "trending":
			cmdErr = a.Trending(ctx, args)
		case "upload":
			cmdErr = a.Upload(ctx, args)
		case "myposts":
			cmdErr = a.MyPosts(ctx, args)
		case "editpost":
			cmdErr = a.EditPost(ctx, args)
		case "delpost":
			cmdErr = a.DeletePost(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			var usage errUsage
			if errors.As(cmdErr, &usage) {
				printlnFn(usage.Error())
			} else {
				printlnFn("Error:", client.Message(cmdErr))
			}
		}
		if err != nil {
			return
		}
	}
}
