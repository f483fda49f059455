package nginx

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Category groups lint rules by concern.
type Category string

const (
	CategorySecurity     Category = "security"
	CategoryPerformance  Category = "performance"
	CategoryCorrectness  Category = "correctness"
	CategoryBestPractice Category = "best-practice"
)

// Severity ranks a finding. Errors weigh heaviest in the health score.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

func severityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

func severityPenalty(s Severity) int {
	switch s {
	case SeverityError:
		return 20
	case SeverityWarning:
		return 10
	default:
		return 2
	}
}

// Rule is one entry in the fixed lint catalog. Test is a pure predicate over
// the model; Fix, when present, returns a partial model that resolves the
// finding. Rule IDs are stable slugs and part of the external contract.
type Rule struct {
	ID       string
	Title    string
	Message  string
	Category Category
	Severity Severity
	DocsURL  string
	Test     func(*ServerConfig) bool
	Fix      func(*ServerConfig) *Patch
}

// Finding is a single fired rule in a report.
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Fixable  bool     `json:"fixable"`
	DocsURL  string   `json:"docs_url,omitempty"`
}

// Report is the outcome of a full lint run. Valid is true when no
// error-severity rule fired. Score starts at 100 and loses a fixed penalty
// per finding, floored at zero.
type Report struct {
	Findings []Finding `json:"findings"`
	Score    int       `json:"score"`
	Valid    bool      `json:"valid"`
}

// Lint runs every catalog rule against the model. A panicking rule is logged
// and treated as not firing so one broken predicate never aborts the scan.
func Lint(m *ServerConfig) *Report {
	report := &Report{Score: 100, Valid: true}

	for _, rule := range Rules {
		if !safeTest(rule, m) {
			continue
		}
		report.Findings = append(report.Findings, Finding{
			RuleID:   rule.ID,
			Title:    rule.Title,
			Message:  rule.Message,
			Category: rule.Category,
			Severity: rule.Severity,
			Fixable:  rule.Fix != nil,
			DocsURL:  rule.DocsURL,
		})
		report.Score -= severityPenalty(rule.Severity)
		if rule.Severity == SeverityError {
			report.Valid = false
		}
	}

	if report.Score < 0 {
		report.Score = 0
	}
	sort.SliceStable(report.Findings, func(i, j int) bool {
		ri, rj := severityRank(report.Findings[i].Severity), severityRank(report.Findings[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return report.Findings[i].Title < report.Findings[j].Title
	})
	return report
}

func safeTest(rule Rule, m *ServerConfig) (fired bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.WithFields(logrus.Fields{
				"rule":  rule.ID,
				"panic": rec,
			}).Warn("Lint rule panicked; treating as not fired")
			fired = false
		}
	}()
	return rule.Test(m)
}

// FixResult reports a single-rule fix attempt.
type FixResult struct {
	Model   *ServerConfig `json:"model"`
	Applied bool          `json:"applied"`
}

// ApplyFix applies one rule's fix to a copy of the model. The rule is
/// re-tested first: fixing a model the rule does not fire on is a no-op.
// Applied is true only if the merged patch actually changed the model.
func ApplyFix(m *ServerConfig, ruleID string) (*FixResult, error) {
	rule, ok := ruleByID(ruleID)
	if !ok {
		return nil, fmt.Errorf("unknown lint rule %q", ruleID)
	}

	out := m.Clone()
	if rule.Fix == nil || !safeTest(rule, out) {
		return &FixResult{Model: out, Applied: false}, nil
	}

	before := out.Signature()
	rule.Fix(out).Apply(out)
	return &FixResult{Model: out, Applied: out.Signature() != before}, nil
}

// FixAllResult reports a fix-all sweep.
type FixAllResult struct {
	Model          *ServerConfig `json:"model"`
	Applied        bool          `json:"applied"`
	AppliedRuleIDs []string      `json:"applied_rule_ids"`
}

const maxFixPasses = 3

// ApplyAllFixes sweeps the catalog in order, applying every firing rule's
// fix, for up to three passes. It stops early when a pass changes nothing or
// when a pass reproduces a model already seen, so two fixes can never undo
// each other forever. Running it on its own output applies nothing.
func ApplyAllFixes(m *ServerConfig) *FixAllResult {
	out := m.Clone()
	res := &FixAllResult{Model: out}

	seen := map[string]bool{out.Signature(): true}
	appliedIDs := map[string]bool{}

	for pass := 0; pass < maxFixPasses; pass++ {
		changed := false
		for _, rule := range Rules {
			if rule.Fix == nil || !safeTest(rule, out) {
				continue
			}
			before := out.Signature()
			rule.Fix(out).Apply(out)
			if out.Signature() != before {
				changed = true
				if !appliedIDs[rule.ID] {
					appliedIDs[rule.ID] = true
					res.AppliedRuleIDs = append(res.AppliedRuleIDs, rule.ID)
					res.Applied = true
				}
			}
		}
		if !changed {
			break
		}
		sig := out.Signature()
		if seen[sig] {
			break
		}
		seen[sig] = true
	}

	res.Model = out
	return res
}

func ruleByID(id string) (Rule, bool) {
	for _, r := range Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
