package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"hr-assistant/internal/ai"
	"hr-assistant/internal/app"
	"hr-assistant/internal/core"
	"hr-assistant/internal/memory"
)

// scriptedAgent calls the listed tools with the message as query and replies
// with their outputs joined.
type scriptedAgent struct {
	tools   []string
	reply   string
	err     error
	history []ai.Message
	offered []string
}

func (a *scriptedAgent) Run(ctx context.Context, history []ai.Message, input string, tools *ai.ToolRegistry) (string, error) {
	a.history = history
	for _, t := range tools.All() {
		a.offered = append(a.offered, t.Name)
	}
	if a.err != nil {
		return "", a.err
	}
	if a.reply != "" || len(a.tools) == 0 {
		return a.reply, nil
	}
	var outs []string
	for _, name := range a.tools {
		outs = append(outs, tools.Invoke(ctx, name, `{"query":`+quote(input)+`}`))
	}
	return strings.Join(outs, " | "), nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

type staticRouter struct{ route core.Route }

func (r staticRouter) Route(context.Context, string, core.Role, core.ActionMenu) (core.Route, error) {
	return r.route, nil
}

type staticRetriever struct{ text string }

func (r staticRetriever) Retrieve(context.Context, string) (string, error) { return r.text, nil }

type brokenHistory struct{}

func (brokenHistory) Recent(context.Context, string) ([]ai.Message, error) {
	return nil, errors.New("redis down")
}

func (brokenHistory) Append(context.Context, string, ...ai.Message) error {
	return errors.New("redis down")
}

func newService(t *testing.T, agent ai.AgentService, history memory.History) app.ApplicationService {
	t.Helper()
	role := core.RoleEmployee
	name := "Lina Park"
	store := core.NewMemoryStore(core.UserRecord{ID: "u1", Name: &name, Role: &role, BaseSalary: core.NullMoney("4200")})
	router := staticRouter{route: core.SelectedRoute{Action: core.ActionMyPersonalInfo, Params: map[string]string{core.ParamField: "salary"}}}
	dispatcher := core.NewDispatcher(core.NewRecords(store), router, zaptest.NewLogger(t))
	return app.NewAppService(dispatcher, agent, history, staticRetriever{text: "Leave policy: 21 days."}, 1400, zaptest.NewLogger(t))
}

func TestChat_ToolsAreBoundToCaller(t *testing.T) {
	agent := &scriptedAgent{tools: []string{ai.ToolUserData, ai.ToolPolicyRetriever, ai.ToolBulkGuardrail}}
	svc := newService(t, agent, memory.NewLocalHistory(5))

	res, err := svc.Chat(context.Background(), app.ChatRequest{UserID: "u1", Message: "what is my salary?"})
	require.NoError(t, err)
	assert.Equal(t, app.SignalTextResponse, res.Signal)
	assert.Equal(t, "Lina Park's total compensation is $4,200.00. | Leave policy: 21 days. | "+core.BulkRefusal, res.Message)
	assert.ElementsMatch(t, []string{ai.ToolUserData, ai.ToolPolicyRetriever, ai.ToolBulkGuardrail}, agent.offered)
}

func TestChat_HistoryRoundTrip(t *testing.T) {
	agent := &scriptedAgent{reply: "Hello!"}
	history := memory.NewLocalHistory(5)
	svc := newService(t, agent, history)
	ctx := context.Background()

	_, err := svc.Chat(ctx, app.ChatRequest{UserID: "u1", Message: "hi"})
	require.NoError(t, err)
	_, err = svc.Chat(ctx, app.ChatRequest{UserID: "u1", Message: "again"})
	require.NoError(t, err)

	assert.Equal(t, []ai.Message{
		{Role: ai.RoleUser, Content: "hi"},
		{Role: ai.RoleAssistant, Content: "Hello!"},
	}, agent.history)

	h, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, h.Messages, 4)
}

func TestChat_EmptyReply(t *testing.T) {
	svc := newService(t, &scriptedAgent{}, memory.NewLocalHistory(5))
	res, err := svc.Chat(context.Background(), app.ChatRequest{UserID: "u1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, app.EmptyReply, res.Message)
}

func TestChat_HistoryFailureIsNotFatal(t *testing.T) {
	svc := newService(t, &scriptedAgent{reply: "ok"}, brokenHistory{})
	res, err := svc.Chat(context.Background(), app.ChatRequest{UserID: "u1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Message)
}

func TestChat_AgentFailure(t *testing.T) {
	svc := newService(t, &scriptedAgent{err: ai.ErrStepLimit}, memory.NewLocalHistory(5))
	_, err := svc.Chat(context.Background(), app.ChatRequest{UserID: "u1", Message: "hi"})
	assert.ErrorIs(t, err, ai.ErrStepLimit)
}

func TestChat_Validation(t *testing.T) {
	svc := newService(t, &scriptedAgent{reply: "ok"}, memory.NewLocalHistory(5))
	ctx := context.Background()

	tests := []struct {
		name string
		req  app.ChatRequest
	}{
		{"blank message", app.ChatRequest{UserID: "u1", Message: "   "}},
		{"too long", app.ChatRequest{UserID: "u1", Message: strings.Repeat("é", 1401)}},
		{"no user", app.ChatRequest{Message: "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Chat(ctx, tt.req)
			assert.ErrorIs(t, err, app.ErrInvalidRequest)
		})
	}

	_, err := svc.Chat(ctx, app.ChatRequest{UserID: "u1", Message: strings.Repeat("é", 1400)})
	assert.NoError(t, err)
}

func TestAsk(t *testing.T) {
	svc := newService(t, &scriptedAgent{}, memory.NewLocalHistory(5))

	res, err := svc.Ask(context.Background(), app.AskRequest{UserID: "u1", Query: "my salary"})
	require.NoError(t, err)
	assert.Equal(t, "Lina Park's total compensation is $4,200.00.", res.Answer)

	res, err = svc.Ask(context.Background(), app.AskRequest{UserID: "ghost", Query: "my salary"})
	require.NoError(t, err)
	assert.Equal(t, "I'm sorry, I couldn't find your user profile.", res.Answer)
}
