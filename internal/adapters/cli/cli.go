package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"hr-assistant/internal/adapters/web"
	"hr-assistant/internal/app"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("usage")

const usage = `Usage:
  app ask <user-id> "<query>"      answer a personal data question directly
  app chat <user-id> "<message>"   send a message through the assistant
  app history <user-id>            show the retained conversation
  app token <user-id>              print a bearer token for the HTTP API
  app                              start the interactive session`

// Options carries what the token command needs.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Run executes a one-shot CLI command and writes its output to out.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, opts Options, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command\n%s", ErrUsage, usage)
	}

	switch args[0] {
	case "ask", "a":
		if len(args) < 3 {
			return fmt.Errorf("%w: app ask <user-id> \"<query>\"", ErrUsage)
		}
		res, err := svc.Ask(ctx, app.AskRequest{UserID: args[1], Query: strings.Join(args[2:], " ")})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Answer)

	case "chat", "c":
		if len(args) < 3 {
			return fmt.Errorf("%w: app chat <user-id> \"<message>\"", ErrUsage)
		}
		res, err := svc.Chat(ctx, app.ChatRequest{UserID: args[1], Message: strings.Join(args[2:], " ")})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Message)

	case "history", "hist":
		if len(args) < 2 {
			return fmt.Errorf("%w: app history <user-id>", ErrUsage)
		}
		res, err := svc.History(ctx, args[1])
		if err != nil {
			return err
		}
		printHistory(out, res)

	case "token", "tok":
		if len(args) < 2 {
			return fmt.Errorf("%w: app token <user-id>", ErrUsage)
		}
		token, err := web.IssueToken(opts.JWTSecret, args[1], opts.TokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, token)

	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)

	default:
		return fmt.Errorf("%w: unknown command %s\n%s", ErrUsage, args[0], usage)
	}
	return nil
}

func printHistory(out io.Writer, res *app.HistoryResult) {
	if len(res.Messages) == 0 {
		fmt.Fprintln(out, "No conversation history.")
		return
	}
	for _, m := range res.Messages {
		fmt.Fprintf(out, "%-9s %s\n", m.Role+":", m.Content)
	}
}
