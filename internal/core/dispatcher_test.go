package core_test

import (
	"context"
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"hr-assistant/internal/core"
	"hr-assistant/internal/metrics"
)

type fakeRouter struct {
	route core.Route
	err   error

	calls int
	query string
	role  core.Role
	menu  core.ActionMenu
}

func (f *fakeRouter) Route(_ context.Context, query string, role core.Role, menu core.ActionMenu) (core.Route, error) {
	f.calls++
	f.query, f.role, f.menu = query, role, menu
	return f.route, f.err
}

func selected(action core.Action, params map[string]string) core.SelectedRoute {
	return core.SelectedRoute{Action: action, Params: params}
}

func newDispatcher(t *testing.T, store core.RecordStore, router core.Router) *core.Dispatcher {
	t.Helper()
	return core.NewDispatcher(core.NewRecords(store), router, zaptest.NewLogger(t))
}

func TestDispatcher_CallerChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown caller", func(t *testing.T) {
		router := &fakeRouter{}
		got := newDispatcher(t, seedStore(t), router).AnswerPersonalQuery(ctx, "my salary", "nobody")
		assert.Equal(t, "I'm sorry, I couldn't find your user profile.", got)
		assert.Zero(t, router.calls)
	})

	t.Run("store down", func(t *testing.T) {
		router := &fakeRouter{}
		spy := &spyStore{RecordStore: seedStore(t), err: errors.New("dial tcp: refused")}
		got := newDispatcher(t, spy, router).AnswerPersonalQuery(ctx, "my salary", "u-emp-1")
		assert.Equal(t, "I am sorry, but I cannot connect to our database at the moment.", got)
		assert.Zero(t, router.calls)
	})

	t.Run("unconfigured role", func(t *testing.T) {
		router := &fakeRouter{}
		got := newDispatcher(t, seedStore(t), router).AnswerPersonalQuery(ctx, "my salary", "u-contractor")
		assert.Equal(t, "I'm sorry, your user role ('contractor') is not configured for any actions.", got)
		assert.Zero(t, router.calls)
	})

	t.Run("missing role", func(t *testing.T) {
		got := newDispatcher(t, seedStore(t), &fakeRouter{}).AnswerPersonalQuery(ctx, "my salary", "u-norole")
		assert.Equal(t, "I'm sorry, your user role ('unknown') is not configured for any actions.", got)
	})
}

func TestDispatcher_RouterReceivesCallerMenu(t *testing.T) {
	router := &fakeRouter{route: selected(core.ActionMyPersonalInfo, map[string]string{core.ParamField: "email"})}
	newDispatcher(t, seedStore(t), router).AnswerPersonalQuery(context.Background(), "what's my email", "u-emp-2")

	require.Equal(t, 1, router.calls)
	assert.Equal(t, "what's my email", router.query)
	assert.Equal(t, core.RoleEmployee, router.role)
	assert.Equal(t, core.MenuFor(core.RoleEmployee), router.menu)
}

func TestDispatcher_ClassificationFailures(t *testing.T) {
	tests := []struct {
		name   string
		router *fakeRouter
	}{
		{"router error", &fakeRouter{err: context.DeadlineExceeded}},
		{"unrecognized output", &fakeRouter{route: core.UnrecognizedRoute{Raw: "not json", Reason: "not an object"}}},
		{"nil route", &fakeRouter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newDispatcher(t, seedStore(t), tt.router).AnswerPersonalQuery(context.Background(), "???", "u-emp-1")
			assert.Equal(t, core.GenericRefusal, got)
		})
	}
}

func TestDispatcher_PermissionDenied(t *testing.T) {
	tests := []struct {
		name   string
		caller string
		route  core.SelectedRoute
	}{
		{"employee asks about someone else", "u-emp-1", selected(core.ActionAnyoneInformation, map[string]string{core.ParamTargetIdentifier: "omar.haddad@example.com"})},
		{"employee asks applicant count", "u-emp-1", selected(core.ActionApplicantCount, nil)},
		{"applicant asks applicant count", "u-new-1", selected(core.ActionApplicantCount, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newDispatcher(t, seedStore(t), &fakeRouter{route: tt.route}).AnswerPersonalQuery(context.Background(), "q", tt.caller)
			assert.Equal(t, core.GenericRefusal, got)
		})
	}
}

func TestDispatcher_SelfService(t *testing.T) {
	tests := []struct {
		name  string
		route core.SelectedRoute
		want  string
	}{
		{
			name:  "own salary",
			route: selected(core.ActionMyPersonalInfo, map[string]string{core.ParamField: "salary"}),
			want:  "Salma Ali's total compensation is $55,000.00.",
		},
		{
			name:  "own field",
			route: selected(core.ActionMyPersonalInfo, map[string]string{core.ParamField: "annualLeaveDays"}),
			want:  "The value for 'annualLeaveDays' for Salma Ali is: 21",
		},
		{
			name:  "own field missing",
			route: selected(core.ActionMyPersonalInfo, nil),
			want:  "Please specify what personal information you'd like to know.",
		},
		{
			name:  "own document",
			route: selected(core.ActionMyDocumentStatus, map[string]string{core.ParamDocumentName: "bank letter"}),
			want:  "Action required for Salma Ali: They need to resubmit their 'Bank Letter'.",
		},
		{
			name:  "own document missing",
			route: selected(core.ActionMyDocumentStatus, map[string]string{}),
			want:  "Please specify which document you'd like to check.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newDispatcher(t, seedStore(t), &fakeRouter{route: tt.route}).AnswerPersonalQuery(context.Background(), "q", "u-emp-1")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatcher_AnyoneInformation(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{
			name:   "field by email",
			params: map[string]string{core.ParamTargetIdentifier: "salma.ali@example.com", core.ParamRequestDetails: "department"},
			want:   "The value for 'department' for Salma Ali is: Engineering",
		},
		{
			name:   "document keyword by name",
			params: map[string]string{core.ParamTargetIdentifier: "salma ali", core.ParamRequestDetails: "National ID"},
			want:   "Yes, the 'National ID' for Salma Ali has been successfully submitted and approved.",
		},
		{
			name:   "details default to summary",
			params: map[string]string{core.ParamTargetIdentifier: "lina park"},
			want:   "Here is a summary for Lina Park:\n- Name: Lina Park\n- Email: lina.park@example.com\n- Role: employee\n- Position: Designer",
		},
		{
			name:   "missing target",
			params: map[string]string{core.ParamRequestDetails: "salary"},
			want:   "Please specify the person you are asking about.",
		},
		{
			name:   "unknown target",
			params: map[string]string{core.ParamTargetIdentifier: "ghost", core.ParamRequestDetails: "salary"},
			want:   "I could not find a user matching 'ghost'.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := &fakeRouter{route: selected(core.ActionAnyoneInformation, tt.params)}
			got := newDispatcher(t, seedStore(t), router).AnswerPersonalQuery(context.Background(), "q", "u-hr-1")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatcher_ApplicantCount(t *testing.T) {
	hr := core.UserRecord{ID: "hr", Name: strPtr("Omar"), Role: rolePtr(core.RoleHR)}
	applicant := func(id string) core.UserRecord {
		return core.UserRecord{ID: id, Role: rolePtr(core.RoleNew)}
	}

	tests := []struct {
		name  string
		users []core.UserRecord
		want  string
	}{
		{"none", []core.UserRecord{hr}, "There are currently no new applicants."},
		{"one", []core.UserRecord{hr, applicant("a1")}, "There is currently 1 new applicant."},
		{"five", []core.UserRecord{hr, applicant("a1"), applicant("a2"), applicant("a3"), applicant("a4"), applicant("a5")}, "There are currently 5 new applicants."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := &fakeRouter{route: selected(core.ActionApplicantCount, nil)}
			got := newDispatcher(t, core.NewMemoryStore(tt.users...), router).AnswerPersonalQuery(context.Background(), "how many applicants?", "hr")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatcher_HRAsksForColleagueSalary(t *testing.T) {
	store := core.NewMemoryStore(
		core.UserRecord{ID: "hr", Name: strPtr("Omar Haddad"), Role: rolePtr(core.RoleHR)},
		core.UserRecord{
			ID:         "s",
			Name:       strPtr("Salma"),
			Role:       rolePtr(core.RoleEmployee),
			BaseSalary: core.NullMoney("48000"),
			Bonus:      core.NullMoney("2500.50"),
		},
	)
	router := &fakeRouter{route: selected(core.ActionAnyoneInformation, map[string]string{
		core.ParamTargetIdentifier: "salma",
		core.ParamRequestDetails:   "salary",
	})}

	got := newDispatcher(t, store, router).AnswerPersonalQuery(context.Background(), "what is salma's salary?", "hr")
	assert.Equal(t, "Salma's total compensation is $50,500.50.", got)
	assert.Equal(t, core.RoleHR, router.role)
}

func outcomeCount(t *testing.T, outcome string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.DispatchOutcomes.WithLabelValues(outcome).Write(&m))
	return m.GetCounter().GetValue()
}

func TestDispatcher_CountsOutcomes(t *testing.T) {
	answered := outcomeCount(t, core.OutcomeAnswered)
	denied := outcomeCount(t, core.CodePermissionDenied)

	ctx := context.Background()
	store := seedStore(t)
	newDispatcher(t, store, &fakeRouter{route: selected(core.ActionMyPersonalInfo, map[string]string{core.ParamField: "email"})}).
		AnswerPersonalQuery(ctx, "what is my email?", "u-emp-1")
	newDispatcher(t, store, &fakeRouter{route: selected(core.ActionApplicantCount, nil)}).
		AnswerPersonalQuery(ctx, "how many applicants?", "u-emp-1")

	assert.Equal(t, "ANSWERED", core.OutcomeAnswered)
	assert.Equal(t, answered+1, outcomeCount(t, core.OutcomeAnswered))
	assert.Equal(t, denied+1, outcomeCount(t, core.CodePermissionDenied))
}
