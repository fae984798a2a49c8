package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"hr-assistant/internal/core"
	"hr-assistant/internal/metrics"
)

// Router is the LLM-backed core.Router. Its verdict is untrusted input: the
// dispatcher still checks the action against the caller's menu.
type Router struct {
	classifier Classifier
	timeout    time.Duration
	logger     *zap.Logger
}

// NewRouter returns a Router that gives each classification at most timeout.
func NewRouter(classifier Classifier, timeout time.Duration, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{classifier: classifier, timeout: timeout, logger: logger}
}

// Route classifies query. Transport failures and timeouts are returned as
// errors; malformed output comes back as a core.UnrecognizedRoute.
func (r *Router) Route(ctx context.Context, query string, role core.Role, menu core.ActionMenu) (core.Route, error) {
	prompt, err := RouterPrompt(query, role, menu)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	raw, err := r.classifier.Classify(ctx, prompt)
	metrics.ObserveRouterLatency(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	route := ParseRoute(raw)
	switch v := route.(type) {
	case core.SelectedRoute:
		r.logger.Debug("router selected action", zap.String("action", string(v.Action)), zap.Int("params", len(v.Params)))
	case core.UnrecognizedRoute:
		r.logger.Warn("router output rejected", zap.String("reason", v.Reason), zap.String("raw", v.Raw))
	}
	return route, nil
}

// ParseRoute validates raw classifier output. It accepts exactly one JSON
// object with a string action_name naming a known action and an optional
// parameters object; anything else is unrecognized. Code fences around the
// object are tolerated. Parameter values that are not strings are stringified
// and empty values are dropped.
func ParseRoute(raw string) core.Route {
	unrecognized := func(reason string) core.Route {
		return core.UnrecognizedRoute{Raw: raw, Reason: reason}
	}

	body := stripCodeFence(raw)

	var top map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&top); err != nil || top == nil {
		return unrecognized("output is not a JSON object")
	}
	if dec.More() {
		return unrecognized("trailing data after JSON object")
	}

	for key := range top {
		if key != "action_name" && key != "parameters" {
			return unrecognized(fmt.Sprintf("unexpected key %q", key))
		}
	}

	var name string
	if err := json.Unmarshal(top["action_name"], &name); err != nil || top["action_name"] == nil {
		return unrecognized("action_name is missing or not a string")
	}
	action, ok := core.ParseAction(name)
	if !ok {
		return unrecognized(fmt.Sprintf("unknown action %q", name))
	}

	params := map[string]string{}
	if rawParams, present := top["parameters"]; present && string(rawParams) != "null" {
		var fields map[string]any
		if err := json.Unmarshal(rawParams, &fields); err != nil {
			return unrecognized("parameters is not an object")
		}
		for k, v := range fields {
			if s := paramString(v); s != "" {
				params[k] = s
			}
		}
	}

	return core.SelectedRoute{Action: action, Params: params}
}

func paramString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ core.Router = (*Router)(nil)
