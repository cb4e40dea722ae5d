package validator

import (
	"fmt"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/model"
)

type transitionKey struct {
	from, to string
}

// issueTransitions, testTransitions, requirementTransitions encode the
// per-type allowed status transitions of spec.md §4.3. Unknown from/to
// strings (not present as a key in either position) fall through to
// InvalidStateTransition.
var issueTransitions = map[transitionKey]bool{
	{"open", "in_progress"}:       true,
	{"in_progress", "resolved"}:   true,
	{"resolved", "closed"}:        true,
	{"in_progress", "open"}:       true, // reopen before resolve
	{"resolved", "in_progress"}:   true, // reopen
}

var testTransitions = map[transitionKey]bool{
	{"not_run", "running"}: true,
	{"running", "not_run"}: true,
	{"running", "passing"}: true,
	{"running", "failing"}: true,
	{"passing", "running"}: true,
	{"failing", "running"}: true,
}

var requirementTransitions = map[transitionKey]bool{
	{"draft", "approved"}:       true,
	{"approved", "draft"}:       true,
	{"approved", "implemented"}: true,
	{"implemented", "approved"}: true, // regression
}

func tableFor(t model.Type) (map[transitionKey]bool, []string, bool) {
	switch t {
	case model.TypeIssue:
		return issueTransitions, []string{"open", "in_progress", "resolved", "closed"}, true
	case model.TypeTestCase:
		return testTransitions, []string{"not_run", "running", "passing", "failing"}, true
	case model.TypeRequirement:
		return requirementTransitions, []string{"draft", "approved", "implemented"}, true
	default:
		return nil, nil, false
	}
}

func knownState(states []string, s string) bool {
	for _, v := range states {
		if v == s {
			return true
		}
	}
	return false
}

// CheckTransition validates a from->to status change for a state-bearing
// Neurona type. closed (issue) never transitions further, matching
// spec.md §4.3 ("no closed -> * transitions").
func CheckTransition(t model.Type, from, to string) error {
	table, states, ok := tableFor(t)
	if !ok {
		return engramerr.New(engramerr.KindValidation, engramerr.IDInvalidStateTransition,
			fmt.Sprintf("%s has no state machine", t),
			"state transitions only apply to issue, test_case, and requirement")
	}
	if !knownState(states, from) || !knownState(states, to) {
		return engramerr.New(engramerr.KindValidation, engramerr.IDInvalidStateTransition,
			fmt.Sprintf("%s -> %s", from, to),
			fmt.Sprintf("unknown state for %s; valid states: %v", t, states))
	}
	if !table[transitionKey{from, to}] {
		return engramerr.New(engramerr.KindValidation, engramerr.IDInvalidStateTransition,
			fmt.Sprintf("%s -> %s", from, to),
			fmt.Sprintf("not a legal %s transition", t))
	}
	return nil
}

// ApplyTransition checks and, if legal, applies a status change to n's
// Context — the only sanctioned way to mutate context.status (spec.md
// §4.3's closing sentence).
func ApplyTransition(n *model.Neurona, to string) error {
	from, ok := n.Context.Status()
	if !ok {
		return engramerr.New(engramerr.KindValidation, engramerr.IDInvalidStateTransition,
			n.ID, fmt.Sprintf("%s has no status to transition", n.Type))
	}
	if err := CheckTransition(n.Type, from, to); err != nil {
		return err
	}
	n.Context.SetStatus(to)
	return nil
}
