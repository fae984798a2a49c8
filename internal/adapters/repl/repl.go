package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"hr-assistant/internal/app"
)

var errExit = errors.New("exit")

// Run starts the interactive REPL loop for userID.
// Slash commands are handled deterministically; anything else goes to the
// assistant as a chat message.
func Run(ctx context.Context, svc app.ApplicationService, userID string, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "HR Assistant")
	fmt.Fprintf(out, "Signed in as: %s\n", displayUser(userID))
	fmt.Fprintln(out, "Ask about your records or company policy, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "ask":
			if len(args) == 0 {
				fmt.Fprintln(out, "Usage: /ask <question about your records>")
				return nil
			}
			res, err := svc.Ask(ctx, app.AskRequest{UserID: userID, Query: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			printAnswer(out, res.Answer)

		case "history", "hist":
			res, err := svc.History(ctx, userID)
			if err != nil {
				return err
			}
			printHistory(out, res)

		case "user", "su":
			if len(args) != 1 {
				fmt.Fprintln(out, "Usage: /user <user-id>")
				return nil
			}
			userID = args[0]
			fmt.Fprintf(out, "Now signed in as: %s\n", userID)

		case "whoami":
			fmt.Fprintln(out, displayUser(userID))

		case "help", "h":
			printHelp(out)

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Fprintf(out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if readErr != nil {
				return
			}
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		} else if userID == "" {
			fmt.Fprintln(out, "No user selected. Use /user <user-id> first.")
		} else {
			fmt.Fprintln(out, "[AI] Processing...")
			res, err := svc.Chat(ctx, app.ChatRequest{UserID: userID, Message: input})
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			} else {
				printAnswer(out, res.Message)
			}
		}

		if readErr != nil {
			return
		}
	}
}
