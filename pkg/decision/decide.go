// Package decision implements the pure rule engines at the heart of the
// moderation pipeline: the action decision cascade, the escalation severity
// classifier and the hide-criteria verifier. Every engine fails toward human
// escalation, never toward silent suppression.
package decision

import (
	"github.com/ormstack/moderation-go/pkg/classification"
	"github.com/ormstack/moderation-go/pkg/policy"
)

// Action is the single moderation action chosen for a comment.
type Action string

const (
	ActionReply    Action = "reply"
	ActionHide     Action = "hide"
	ActionEscalate Action = "escalate"
	ActionIgnore   Action = "ignore"
)

// decisionRule is one step of the priority cascade: if match returns true the
// cascade stops and the rule's action is the decision.
type decisionRule struct {
	match  func(classification.Classification, policy.ClassificationRules) bool
	action Action
}

// decisionCascade is the ordered business-logic contract. First matching rule
// wins. The order is load-bearing: medium urgency escalates before the
// confidence fail-safe is consulted, and a medium-urgency comment never
// auto-replies.
var decisionCascade = []decisionRule{
	{
		match: func(c classification.Classification, rules policy.ClassificationRules) bool {
			return c.ToxicityScore >= rules.AutoHideThreshold
		},
		action: ActionHide,
	},
	{
		match: func(c classification.Classification, rules policy.ClassificationRules) bool {
			return c.Urgency == classification.UrgencyHigh
		},
		action: ActionEscalate,
	},
	{
		match: func(c classification.Classification, rules policy.ClassificationRules) bool {
			return c.RequiresResponse && rules.AutoReply() &&
				(c.Intent == classification.IntentQuestion || c.Intent == classification.IntentComplaint)
		},
		action: ActionReply,
	},
	{
		match: func(c classification.Classification, rules policy.ClassificationRules) bool {
			// Routed to human review, never auto-replied.
			return c.Urgency == classification.UrgencyMedium
		},
		action: ActionEscalate,
	},
	{
		match: func(c classification.Classification, rules policy.ClassificationRules) bool {
			return c.Confidence < rules.MinConfidenceThreshold
		},
		action: ActionEscalate,
	},
}

// Decide maps a refined classification and tenant policy to exactly one
// action. Any internal panic during evaluation fails safe to escalate so the
// comment always reaches a human instead of being dropped.
func Decide(c classification.Classification, rules policy.ClassificationRules) (action Action) {
	defer func() {
		if r := recover(); r != nil {
			action = ActionEscalate
		}
	}()

	for _, rule := range decisionCascade {
		if rule.match(c, rules) {
			return rule.action
		}
	}
	return ActionIgnore
}
