package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"hr-assistant/internal/metrics"
)

// OutcomeAnswered is the metrics label for a request that produced an answer.
const OutcomeAnswered = "ANSWERED"

// documentKeywords route an HR request about another person to the document
// matcher instead of the field formatter.
var documentKeywords = []string{"document", "certificate", "id", "bank", "submission", "status", "upload"}

// Dispatcher answers personal data questions on behalf of an authenticated
// caller. It never returns an error: every failure becomes a fixed reply.
type Dispatcher struct {
	records *Records
	router  Router
	logger  *zap.Logger
}

// NewDispatcher constructs a Dispatcher. A nil logger is replaced with a no-op.
func NewDispatcher(records *Records, router Router, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{records: records, router: router, logger: logger}
}

// AnswerPersonalQuery classifies query against the caller's permitted actions
// and returns the text to show them.
func (d *Dispatcher) AnswerPersonalQuery(ctx context.Context, query, callerID string) string {
	var t trace
	answer, err := d.answer(ctx, query, callerID, &t)

	log := d.logger.With(
		zap.String("caller", callerID),
		zap.String("role", string(t.role)),
		zap.String("action", string(t.action)),
	)
	if err != nil {
		code := ErrorCode(err)
		metrics.RecordOutcome(code)
		if errors.Is(err, ErrStoreUnavailable) || code == "INTERNAL" {
			log.Error("personal query failed", zap.String("outcome", code), zap.Error(err))
		} else {
			log.Info("personal query refused", zap.String("outcome", code), zap.Error(err))
		}
		return UserMessage(err)
	}

	metrics.RecordOutcome(OutcomeAnswered)
	log.Info("personal query answered", zap.String("outcome", OutcomeAnswered))
	return answer
}

// trace collects what the dispatcher learned before it stopped, for logging.
type trace struct {
	role   Role
	action Action
}

func (d *Dispatcher) answer(ctx context.Context, query, callerID string, t *trace) (string, error) {
	caller, err := d.records.FetchByID(ctx, callerID)
	if err != nil {
		return "", err
	}
	if caller == nil {
		return "", callerNotFound()
	}

	t.role = caller.RoleOrUnknown()
	menu := MenuFor(t.role)
	if len(menu) == 0 {
		return "", roleNotConfigured(t.role)
	}

	route, err := d.router.Route(ctx, query, t.role, menu)
	if err != nil {
		return "", classificationFailed(err)
	}

	var sel SelectedRoute
	switch r := route.(type) {
	case SelectedRoute:
		sel = r
	case UnrecognizedRoute:
		return "", classificationFailed(fmt.Errorf("unrecognized classifier output: %s", r.Reason))
	default:
		return "", classificationFailed(fmt.Errorf("unexpected route type %T", route))
	}
	t.action = sel.Action

	if !menu.Contains(sel.Action) || (sel.Action.hrOnly() && t.role != RoleHR) {
		return "", permissionDenied(sel.Action)
	}

	return d.execute(ctx, caller, sel)
}

func (d *Dispatcher) execute(ctx context.Context, caller *UserRecord, route SelectedRoute) (string, error) {
	switch route.Action {
	case ActionMyPersonalInfo:
		return FormatField(caller, route.Param(ParamField))

	case ActionMyDocumentStatus:
		return CheckDocument(caller, route.Param(ParamDocumentName))

	case ActionApplicantCount:
		n, err := d.records.CountByRole(ctx, RoleNew)
		if err != nil {
			return "", err
		}
		return applicantCountMessage(n), nil

	case ActionAnyoneInformation:
		identifier := strings.TrimSpace(route.Param(ParamTargetIdentifier))
		if identifier == "" {
			return "", missingParameter("Please specify the person you are asking about.")
		}
		target, err := d.records.FetchByIdentifier(ctx, identifier)
		if err != nil {
			return "", err
		}
		if target == nil {
			return "", targetNotFound(identifier)
		}
		details := strings.TrimSpace(route.Param(ParamRequestDetails))
		if details == "" {
			details = "all"
		}
		if mentionsDocument(details) {
			return CheckDocument(target, details)
		}
		return FormatField(target, details)

	default:
		return "", classificationFailed(fmt.Errorf("no handler for action %q", route.Action))
	}
}

func mentionsDocument(details string) bool {
	lower := strings.ToLower(details)
	for _, kw := range documentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func applicantCountMessage(n int) string {
	switch n {
	case 0:
		return "There are currently no new applicants."
	case 1:
		return "There is currently 1 new applicant."
	default:
		return fmt.Sprintf("There are currently %d new applicants.", n)
	}
}
