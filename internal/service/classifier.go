package service

import (
	"strings"

	"github.com/kanbanflow/workflow-engine/internal/models"
)

// StatusRule maps a column name containing any of Keywords to Status.
type StatusRule struct {
	Keywords []string          `mapstructure:"keywords" yaml:"keywords"`
	Status   models.TaskStatus `mapstructure:"status" yaml:"status"`
}

// DefaultStatusRules is evaluated top to bottom; the first rule with a
// matching keyword wins.
var DefaultStatusRules = []StatusRule{
	{Keywords: []string{"done", "completed", "resolved"}, Status: models.TaskStatusCompleted},
	{Keywords: []string{"todo", "backlog"}, Status: models.TaskStatusNotStarted},
	{Keywords: []string{"blocked"}, Status: models.TaskStatusBlocked},
	{Keywords: []string{"progress", "review", "test"}, Status: models.TaskStatusInProgress},
}

// Classifier derives a canonical status from a free-text column name.
type Classifier struct {
	rules    []StatusRule
	fallback models.TaskStatus
}

// NewClassifier builds a classifier from the default table followed by
// extra. Extra rules can only claim names the defaults leave unmatched.
func NewClassifier(extra ...StatusRule) *Classifier {
	rules := make([]StatusRule, 0, len(DefaultStatusRules)+len(extra))
	rules = append(rules, DefaultStatusRules...)
	for _, r := range extra {
		if !r.Status.IsValid() || len(r.Keywords) == 0 {
			continue
		}
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		if len(kw) > 0 {
			rules = append(rules, StatusRule{Keywords: kw, Status: r.Status})
		}
	}
	return &Classifier{rules: rules, fallback: models.TaskStatusInProgress}
}

// Classify never fails: names matching no rule fall back to in_progress.
func (c *Classifier) Classify(columnName string) models.TaskStatus {
	name := strings.ToLower(columnName)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return rule.Status
			}
		}
	}
	return c.fallback
}

func (c *Classifier) Rules() []StatusRule {
	out := make([]StatusRule, len(c.rules))
	copy(out, c.rules)
	return out
}
