package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"hr-assistant/internal/config"
)

// ErrStepLimit is returned when the model keeps calling tools past the limit.
var ErrStepLimit = errors.New("agent step limit reached")

// Message roles kept in conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AgentService answers a chat message, calling tools as needed.
type AgentService interface {
	Run(ctx context.Context, history []Message, input string, tools *ToolRegistry) (string, error)
}

// Agent drives a Responses API function-calling loop.
type Agent struct {
	client          *openai.Client
	model           string
	temperature     float64
	maxOutputTokens int
	maxSteps        int
	logger          *zap.Logger
}

// NewClient builds the OpenAI client shared by the agent and the classifier.
func NewClient(cfg config.OpenAIConfig, opts ...option.RequestOption) *openai.Client {
	base := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(append(base, opts...)...)
	return &client
}

// NewAgent returns an Agent using the generation model settings in cfg.
func NewAgent(client *openai.Client, cfg config.OpenAIConfig, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	steps := cfg.MaxAgentSteps
	if steps <= 0 {
		steps = 6
	}
	return &Agent{
		client:          client,
		model:           cfg.GenerationModel,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		maxSteps:        steps,
		logger:          logger,
	}
}

// Run sends history and input to the model and executes tool calls until the
// model answers in text or the step limit is hit.
func (a *Agent) Run(ctx context.Context, history []Message, input string, tools *ToolRegistry) (string, error) {
	items := make(responses.ResponseInputParam, 0, len(history)+1)
	for _, m := range history {
		role := responses.EasyInputMessageRoleUser
		if m.Role == RoleAssistant {
			role = responses.EasyInputMessageRoleAssistant
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, role))
	}
	items = append(items, responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser))

	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(a.model),
		Instructions: openai.String(AgentInstructions),
		Input:        responses.ResponseNewParamsInputUnion{OfInputItemList: items},
		Tools:        tools.ToOpenAITools(),
		Temperature:  openai.Float(a.temperature),
	}
	if a.maxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(a.maxOutputTokens))
	}

	for step := 1; step <= a.maxSteps; step++ {
		resp, err := a.client.Responses.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("openai responses error: %w", err)
		}

		var outputs responses.ResponseInputParam
		for _, item := range resp.Output {
			if item.Type != "function_call" {
				continue
			}
			call := item.AsFunctionCall()
			a.logger.Info("agent tool call",
				zap.Int("step", step),
				zap.String("tool", call.Name),
				zap.String("call_id", call.CallID),
			)
			out := tools.Invoke(ctx, call.Name, call.Arguments)
			outputs = append(outputs, responses.ResponseInputItemParamOfFunctionCallOutput(call.CallID, out))
		}

		if len(outputs) == 0 {
			return strings.TrimSpace(resp.OutputText()), nil
		}

		params.PreviousResponseID = openai.String(resp.ID)
		params.Input = responses.ResponseNewParamsInputUnion{OfInputItemList: outputs}
	}

	return "", ErrStepLimit
}
