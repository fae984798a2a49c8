package core

import (
	"bytes"
	"context"
	"encoding/json"
)

// Action names one of the personal data operations the router may select.
type Action string

const (
	ActionMyPersonalInfo    Action = "get_my_personal_info"
	ActionMyDocumentStatus  Action = "check_my_document_status"
	ActionAnyoneInformation Action = "get_information_about_anyone"
	ActionApplicantCount    Action = "get_applicant_count"
)

// Parameter names the router extracts.
const (
	ParamField            = "field"
	ParamDocumentName     = "document_name"
	ParamTargetIdentifier = "target_identifier"
	ParamRequestDetails   = "request_details"
)

// ParseAction reports whether s is one of the closed set of actions.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionMyPersonalInfo, ActionMyDocumentStatus, ActionAnyoneInformation, ActionApplicantCount:
		return a, true
	default:
		return "", false
	}
}

// hrOnly reports whether a is restricted to HR callers regardless of the menu.
func (a Action) hrOnly() bool {
	return a == ActionAnyoneInformation || a == ActionApplicantCount
}

// MenuEntry pairs an action with the purpose text shown to the classifier.
type MenuEntry struct {
	Action  Action
	Purpose string
}

// ActionMenu is the ordered set of actions a caller may request.
type ActionMenu []MenuEntry

// Contains reports whether a is on the menu.
func (m ActionMenu) Contains(a Action) bool {
	for _, e := range m {
		if e.Action == a {
			return true
		}
	}
	return false
}

// MarshalJSON renders the menu as an object in menu order, which is how the
// router prompt presents it.
func (m ActionMenu) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(e.Action))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Purpose)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var selfServiceMenu = ActionMenu{
	{ActionMyPersonalInfo, "Get the logged-in user's own core data."},
	{ActionMyDocumentStatus, "Check the logged-in user's own document submission status."},
}

var hrMenu = ActionMenu{
	{ActionMyPersonalInfo, "Get the HR user's own core data."},
	{ActionMyDocumentStatus, "Check the HR user's own document status."},
	{ActionAnyoneInformation, "Get info (data or document status) about any other user."},
	{ActionApplicantCount, "Get the total count of new job applicants."},
}

// MenuFor returns the actions a caller with role may request. Every role in
// KnownRoles must have a case here; anything else gets an empty menu.
func MenuFor(role Role) ActionMenu {
	var menu ActionMenu
	switch role {
	case RoleEmployee, RoleNew:
		menu = selfServiceMenu
	case RoleHR:
		menu = hrMenu
	default:
		return nil
	}
	out := make(ActionMenu, len(menu))
	copy(out, menu)
	return out
}

// Route is the router's verdict. It is either a SelectedRoute or an
// UnrecognizedRoute; callers must handle both and fail closed on anything else.
type Route interface {
	isRoute()
}

// SelectedRoute is a well-formed classification naming one known action.
// It is still untrusted: the dispatcher re-checks permissions.
type SelectedRoute struct {
	Action Action
	Params map[string]string
}

// UnrecognizedRoute is classifier output that broke the contract.
type UnrecognizedRoute struct {
	Raw    string
	Reason string
}

func (SelectedRoute) isRoute()     {}
func (UnrecognizedRoute) isRoute() {}

// Param returns the named parameter, or "" when absent.
func (r SelectedRoute) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Router classifies a free-form query into a Route using the caller's menu.
type Router interface {
	Route(ctx context.Context, query string, role Role, menu ActionMenu) (Route, error)
}
