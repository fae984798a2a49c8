package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-assistant/internal/ai"
	"hr-assistant/internal/config"
)

// scriptedServer answers successive POST /responses calls with the given bodies
// and keeps the decoded requests.
type scriptedServer struct {
	mu       sync.Mutex
	replies  []string
	requests []map[string]any
}

func (s *scriptedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)
	s.requests = append(s.requests, req)

	if r.URL.Path != "/responses" || len(s.replies) == 0 {
		http.Error(w, `{"error":{"message":"unexpected call"}}`, http.StatusBadRequest)
		return
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, reply)
}

func newTestClient(t *testing.T, s *scriptedServer) config.OpenAIConfig {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return config.OpenAIConfig{
		APIKey:          "test-key",
		BaseURL:         srv.URL + "/",
		GenerationModel: "gpt-4o",
		RouterModel:     "gpt-4o-mini",
		Temperature:     0.1,
		MaxAgentSteps:   3,
	}
}

const functionCallReply = `{
  "id": "resp_1",
  "object": "response",
  "created_at": 1,
  "model": "gpt-4o",
  "status": "completed",
  "output": [
    {"type": "function_call", "id": "fc_1", "call_id": "call_1", "name": "get_user_specific_data",
     "arguments": "{\"query\":\"what is my salary?\"}", "status": "completed"}
  ]
}`

func textReply(id, text string) string {
	msg, _ := json.Marshal(text)
	return `{
  "id": "` + id + `",
  "object": "response",
  "created_at": 1,
  "model": "gpt-4o",
  "status": "completed",
  "output": [
    {"type": "message", "id": "msg_1", "role": "assistant", "status": "completed",
     "content": [{"type": "output_text", "text": ` + string(msg) + `, "annotations": []}]}
  ]
}`
}

func TestAgent_RunsToolThenAnswers(t *testing.T) {
	s := &scriptedServer{replies: []string{functionCallReply, textReply("resp_2", "Your total compensation is $55,000.00.")}}
	cfg := newTestClient(t, s)
	agent := ai.NewAgent(ai.NewClient(cfg, option.WithMaxRetries(0)), cfg, nil)

	var gotQuery string
	tools := ai.NewToolRegistry()
	tools.Register(ai.QueryTool(ai.ToolUserData, "user data", func(_ context.Context, q string) (string, error) {
		gotQuery = q
		return "Salma Ali's total compensation is $55,000.00.", nil
	}))

	history := []ai.Message{
		{Role: ai.RoleUser, Content: "hi"},
		{Role: ai.RoleAssistant, Content: "Hello! How can I help?"},
	}
	out, err := agent.Run(context.Background(), history, "what is my salary?", tools)
	require.NoError(t, err)
	assert.Equal(t, "Your total compensation is $55,000.00.", out)
	assert.Equal(t, "what is my salary?", gotQuery)

	require.Len(t, s.requests, 2)
	first := s.requests[0]
	assert.Equal(t, "gpt-4o", first["model"])
	assert.Equal(t, ai.AgentInstructions, first["instructions"])
	assert.Len(t, first["input"], 3)
	assert.Len(t, first["tools"], 1)

	second := s.requests[1]
	assert.Equal(t, "resp_1", second["previous_response_id"])
	input, ok := second["input"].([]any)
	require.True(t, ok)
	require.Len(t, input, 1)
	item := input[0].(map[string]any)
	assert.Equal(t, "function_call_output", item["type"])
	assert.Equal(t, "call_1", item["call_id"])
	assert.Equal(t, "Salma Ali's total compensation is $55,000.00.", item["output"])
}

func TestAgent_StepLimit(t *testing.T) {
	s := &scriptedServer{replies: []string{functionCallReply, functionCallReply, functionCallReply}}
	cfg := newTestClient(t, s)
	agent := ai.NewAgent(ai.NewClient(cfg, option.WithMaxRetries(0)), cfg, nil)

	tools := ai.NewToolRegistry()
	tools.Register(ai.QueryTool(ai.ToolUserData, "user data", func(context.Context, string) (string, error) {
		return "again", nil
	}))

	_, err := agent.Run(context.Background(), nil, "loop", tools)
	assert.ErrorIs(t, err, ai.ErrStepLimit)
	assert.Len(t, s.requests, 3)
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	raw := `{"action_name":"get_applicant_count","parameters":{"field":"","document_name":"","target_identifier":"","request_details":""}}`
	s := &scriptedServer{replies: []string{textReply("resp_c", raw)}}
	cfg := newTestClient(t, s)

	classifier, err := ai.NewOpenAIClassifier(ai.NewClient(cfg, option.WithMaxRetries(0)), cfg.RouterModel)
	require.NoError(t, err)

	out, err := classifier.Classify(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, raw, out)

	require.Len(t, s.requests, 1)
	req := s.requests[0]
	assert.Equal(t, "gpt-4o-mini", req["model"])
	assert.Equal(t, "prompt text", req["input"])
	assert.EqualValues(t, 0, req["temperature"])

	format := req["text"].(map[string]any)["format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, true, format["strict"])
	schema := format["schema"].(map[string]any)
	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, []any{"action_name", "parameters"}, schema["required"])
}

func TestOpenAIClassifier_EmptyOutput(t *testing.T) {
	s := &scriptedServer{replies: []string{`{"id":"resp_e","object":"response","status":"completed","output":[]}`}}
	cfg := newTestClient(t, s)

	classifier, err := ai.NewOpenAIClassifier(ai.NewClient(cfg, option.WithMaxRetries(0)), cfg.RouterModel)
	require.NoError(t, err)

	_, err = classifier.Classify(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestToolRegistry_Invoke(t *testing.T) {
	tools := ai.NewToolRegistry()
	tools.Register(ai.QueryTool(ai.ToolBulkGuardrail, "guardrail", func(_ context.Context, q string) (string, error) {
		return "refused: " + q, nil
	}))

	assert.Equal(t, "refused: list everyone", tools.Invoke(context.Background(), ai.ToolBulkGuardrail, `{"query":"list everyone"}`))
	assert.Contains(t, tools.Invoke(context.Background(), "nope", `{}`), "unknown tool")
	assert.Contains(t, tools.Invoke(context.Background(), ai.ToolBulkGuardrail, `{bad`), "invalid arguments")

	openaiTools := tools.ToOpenAITools()
	require.Len(t, openaiTools, 1)
	assert.Equal(t, ai.ToolBulkGuardrail, openaiTools[0].OfFunction.Name)

	schema := ai.QueryToolSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"query"}, schema["required"])
}
