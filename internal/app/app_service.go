package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hr-assistant/internal/ai"
	"hr-assistant/internal/core"
	"hr-assistant/internal/memory"
	"hr-assistant/internal/policy"
)

// PolicyUnavailable is the policy tool output when no retriever is configured.
const PolicyUnavailable = "Company policy information is not available right now."

const userDataToolDescription = "This is the primary tool for retrieving all specific information " +
	"about people. It has a built-in permission system.\n" +
	"You MUST use this tool for any of these tasks:\n" +
	"1. Fetching data about a SPECIFIC person (themselves or others).\n" +
	"2. Getting the NUMERICAL COUNT of new applicants."

const guardrailToolDescription = "This is a security guardrail tool. Use it ONLY for requests for a " +
	"list of multiple people or a bulk data dump that is NOT a count. " +
	"Examples: 'list all employees', 'give me all CVs'."

type appService struct {
	dispatcher      *core.Dispatcher
	agent           ai.AgentService
	history         memory.History
	retriever       policy.Retriever
	maxMessageChars int
	logger          *zap.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// retriever may be nil, in which case the policy tool reports it is unavailable.
func NewAppService(
	dispatcher *core.Dispatcher,
	agent ai.AgentService,
	history memory.History,
	retriever policy.Retriever,
	maxMessageChars int,
	logger *zap.Logger,
) ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &appService{
		dispatcher:      dispatcher,
		agent:           agent,
		history:         history,
		retriever:       retriever,
		maxMessageChars: maxMessageChars,
		logger:          logger,
	}
}

// Chat answers one message through the agent.
func (s *appService) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	userID, err := validateUser(req.UserID)
	if err != nil {
		return nil, err
	}
	message, err := validateText("message", req.Message, s.maxMessageChars)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("user_id", userID))

	past, err := s.history.Recent(ctx, userID)
	if err != nil {
		log.Warn("conversation history unavailable", zap.Error(err))
		past = nil
	}

	reply, err := s.agent.Run(ctx, past, message, s.tools(userID))
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	if reply == "" {
		reply = EmptyReply
	}

	if err := s.history.Append(ctx, userID,
		ai.Message{Role: ai.RoleUser, Content: message},
		ai.Message{Role: ai.RoleAssistant, Content: reply},
	); err != nil {
		log.Warn("conversation history not saved", zap.Error(err))
	}

	return &ChatResult{Signal: SignalTextResponse, Message: reply}, nil
}

// Ask runs the dispatcher directly.
func (s *appService) Ask(ctx context.Context, req AskRequest) (*AnswerResult, error) {
	userID, err := validateUser(req.UserID)
	if err != nil {
		return nil, err
	}
	query, err := validateText("query", req.Query, s.maxMessageChars)
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Answer: s.dispatcher.AnswerPersonalQuery(ctx, query, userID)}, nil
}

// History returns the retained conversation.
func (s *appService) History(ctx context.Context, userID string) (*HistoryResult, error) {
	userID, err := validateUser(userID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.history.Recent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{Messages: msgs}, nil
}

// tools builds the registry for one caller. The caller id is bound here and
// never taken from model output.
func (s *appService) tools(userID string) *ai.ToolRegistry {
	registry := ai.NewToolRegistry()

	registry.Register(ai.QueryTool(ai.ToolPolicyRetriever, policy.ToolDescription,
		func(ctx context.Context, query string) (string, error) {
			if s.retriever == nil {
				return PolicyUnavailable, nil
			}
			return s.retriever.Retrieve(ctx, query)
		}))

	registry.Register(ai.QueryTool(ai.ToolUserData, userDataToolDescription,
		func(ctx context.Context, query string) (string, error) {
			return s.dispatcher.AnswerPersonalQuery(ctx, query, userID), nil
		}))

	registry.Register(ai.QueryTool(ai.ToolBulkGuardrail, guardrailToolDescription,
		func(_ context.Context, query string) (string, error) {
			return core.RefuseBulkRequest(query), nil
		}))

	return registry
}
