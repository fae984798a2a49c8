package app

import "hr-assistant/internal/ai"

// SignalTextResponse marks a normal answer.
const SignalTextResponse = "TEXT_RESPONSE"

// SignalError marks a failed chat turn.
const SignalError = "ERROR"

// EmptyReply is sent when the agent produced no text.
const EmptyReply = "I'm sorry, I couldn't generate a response."

// ChatResult is returned by Chat.
type ChatResult struct {
	Signal  string
	Message string
}

// AnswerResult is returned by Ask.
type AnswerResult struct {
	Answer string
}

// HistoryResult is returned by History.
type HistoryResult struct {
	Messages []ai.Message
}
