package repl

import (
	"fmt"
	"io"
	"strings"

	"hr-assistant/internal/app"
)

func displayUser(userID string) string {
	if userID == "" {
		return "(none)"
	}
	return userID
}

func printAnswer(out io.Writer, text string) {
	fmt.Fprintf(out, "\n[AI]: %s\n", text)
}

func printHistory(out io.Writer, res *app.HistoryResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 70))
	fmt.Fprintf(out, "  %-66s\n", "CONVERSATION HISTORY")
	fmt.Fprintln(out, strings.Repeat("=", 70))
	if len(res.Messages) == 0 {
		fmt.Fprintln(out, "  No messages yet.")
	}
	for _, m := range res.Messages {
		fmt.Fprintf(out, "  %-10s %s\n", strings.ToUpper(m.Role), m.Content)
	}
	fmt.Fprintln(out, strings.Repeat("=", 70))
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  /ask <question>   answer from your records without the assistant")
	fmt.Fprintln(out, "  /history          show the retained conversation")
	fmt.Fprintln(out, "  /user <user-id>   switch the signed-in user")
	fmt.Fprintln(out, "  /whoami           show the signed-in user")
	fmt.Fprintln(out, "  /exit             leave")
	fmt.Fprintln(out, "Anything else is sent to the assistant.")
}
