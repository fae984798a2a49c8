package app

import (
	"context"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// Implementations contain no display logic of any kind.
type ApplicationService interface {
	// Chat answers one chat message from userID through the tool-using agent,
	// using and extending that user's recent conversation.
	Chat(ctx context.Context, req ChatRequest) (*ChatResult, error)

	// Ask sends query straight to the personal data dispatcher, bypassing the
	// agent. The answer is always a fixed-form reply.
	Ask(ctx context.Context, req AskRequest) (*AnswerResult, error)

	// History returns the retained conversation of userID, oldest first.
	History(ctx context.Context, userID string) (*HistoryResult, error)
}
