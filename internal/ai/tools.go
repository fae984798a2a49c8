package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"

	"hr-assistant/internal/metrics"
)

// Tool names offered to the chat agent.
const (
	ToolUserData        = "get_user_specific_data"
	ToolPolicyRetriever = "company_policy_retriever"
	ToolBulkGuardrail   = "handle_sensitive_or_broad_data_request"
)

// ToolHandler executes a tool. It receives the parsed JSON arguments and
// returns the text handed back to the model.
type ToolHandler func(ctx context.Context, params map[string]any) (string, error)

// ToolDefinition describes a single tool in the registry.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any // JSON Schema for the tool's input parameters
	Handler     ToolHandler
}

// ToolRegistry holds all tools available to the agent for a given call.
// Registries are built per request so handlers can close over the caller.
type ToolRegistry struct {
	tools []ToolDefinition
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(t ToolDefinition) {
	r.tools = append(r.tools, t)
}

// Get returns the ToolDefinition for a given tool name, and whether it was found.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDefinition{}, false
}

// All returns all registered tools.
func (r *ToolRegistry) All() []ToolDefinition {
	return r.tools
}

// ToOpenAITools converts the registry to the OpenAI Responses API tool format.
func (r *ToolRegistry) ToOpenAITools() []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.InputSchema,
				Strict:      openai.Bool(true),
			},
		})
	}
	return out
}

// Invoke runs the named tool with JSON-encoded arguments. Failures are
// returned as the tool output so the model can report them.
func (r *ToolRegistry) Invoke(ctx context.Context, name, arguments string) string {
	metrics.RecordToolCall(name)

	t, ok := r.Get(name)
	if !ok || t.Handler == nil {
		return fmt.Sprintf("Error: unknown tool %q.", name)
	}

	params := map[string]any{}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &params); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
	}

	out, err := t.Handler(ctx, params)
	if err != nil {
		return fmt.Sprintf("Error: %s failed: %v", name, err)
	}
	return out
}

// queryInput is the argument shape shared by every tool the agent uses.
type queryInput struct {
	Query string `json:"query" jsonschema:"description=The user's question or the single sub-question this tool should answer"`
}

// QueryToolSchema returns the JSON Schema of a tool that takes one query string.
func QueryToolSchema() map[string]any {
	schema, err := reflectSchema(queryInput{})
	if err != nil {
		panic(err)
	}
	return schema
}

// QueryTool adapts fn to a ToolDefinition taking {"query": string}.
func QueryTool(name, description string, fn func(ctx context.Context, query string) (string, error)) ToolDefinition {
	return ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: QueryToolSchema(),
		Handler: func(ctx context.Context, params map[string]any) (string, error) {
			query, _ := params["query"].(string)
			return fn(ctx, query)
		},
	}
}
