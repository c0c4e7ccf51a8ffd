package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/KaramelBytes/datascrub-cli/internal/clean"
	"github.com/KaramelBytes/datascrub-cli/internal/table"
)

// Rule identifies the heuristic behind a finding.
type Rule string

const (
	RuleNumericMismatch Rule = "numeric_mismatch"
	RuleInvalidEmail    Rule = "invalid_email"
	RuleInvalidPhone    Rule = "invalid_phone"
	RuleUnparseableDate Rule = "unparseable_date"
)

// NoInconsistencies is reported when no heuristic fires.
const NoInconsistencies = "No basic inconsistencies detected with the current heuristics."

var (
	EmailKeywords = []string{"mail", "correo", "email"}
	PhoneKeywords = []string{"tel", "fono", "phone", "cel"}

	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^[\d\-\+\(\)\s]{7,}$`)
)

// Finding is one data-quality concern on one column.
type Finding struct {
	Column string `json:"column" yaml:"column"`
	Rule   Rule   `json:"rule" yaml:"rule"`
	Count  int    `json:"count" yaml:"count"`
}

// Message renders the finding for display.
func (f Finding) Message() string {
	switch f.Rule {
	case RuleNumericMismatch:
		return fmt.Sprintf("[%s] - Mostly numeric, but %d non-numeric values.", f.Column, f.Count)
	case RuleInvalidEmail:
		return fmt.Sprintf("[%s] - %d emails with invalid format.", f.Column, f.Count)
	case RuleInvalidPhone:
		return fmt.Sprintf("[%s] - %d phone numbers with invalid format.", f.Column, f.Count)
	case RuleUnparseableDate:
		return fmt.Sprintf("[%s] - %d unparseable date values.", f.Column, f.Count)
	}
	return fmt.Sprintf("[%s] - %d findings (%s).", f.Column, f.Count, f.Rule)
}

// InconsistencyReport lists findings; no findings is a valid outcome.
type InconsistencyReport struct {
	Findings []Finding `json:"findings" yaml:"findings"`
}

// Empty reports whether nothing was found.
func (r InconsistencyReport) Empty() bool { return len(r.Findings) == 0 }

// Lines renders one message per finding, or the NoInconsistencies sentinel.
func (r InconsistencyReport) Lines() []string {
	if r.Empty() {
		return []string{NoInconsistencies}
	}
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Message()
	}
	return out
}

// FindInconsistencies runs the format heuristics over the columns selected by term.
// Findings are ordered by rule, then by column order.
func FindInconsistencies(t *table.Table, term string) InconsistencyReport {
	cols := FilterColumns(t.Columns, term)
	var r InconsistencyReport
	for _, c := range cols {
		ok, total := clean.NumericFraction(c)
		if total == 0 {
			continue
		}
		if clean.MeetsThreshold(ok, total, clean.NumericThreshold) && ok < total {
			r.Findings = append(r.Findings, Finding{Column: c.Name, Rule: RuleNumericMismatch, Count: total - ok})
		}
	}
	for _, c := range cols {
		if clean.NameHasKeyword(c.Name, EmailKeywords) {
			if bad := countInvalid(c, emailRe); bad > 0 {
				r.Findings = append(r.Findings, Finding{Column: c.Name, Rule: RuleInvalidEmail, Count: bad})
			}
		}
	}
	for _, c := range cols {
		if clean.NameHasKeyword(c.Name, PhoneKeywords) {
			if bad := countInvalid(c, phoneRe); bad > 0 {
				r.Findings = append(r.Findings, Finding{Column: c.Name, Rule: RuleInvalidPhone, Count: bad})
			}
		}
	}
	for _, c := range cols {
		if clean.IsDateColumn(c.Name) {
			ok, total := clean.DateFraction(c)
			if bad := total - ok; bad > 0 {
				r.Findings = append(r.Findings, Finding{Column: c.Name, Rule: RuleUnparseableDate, Count: bad})
			}
		}
	}
	return r
}

// countInvalid counts non-missing cells whose trimmed text does not match re.
func countInvalid(c *table.Column, re *regexp.Regexp) int {
	bad := 0
	for i, v := range c.Cells {
		if !v.Valid {
			continue
		}
		if !re.MatchString(strings.TrimSpace(c.Format(i))) {
			bad++
		}
	}
	return bad
}

// ValidEmail reports whether s has a single @ and a dotted domain.
func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// ValidPhone reports whether s looks like a phone number.
func ValidPhone(s string) bool { return phoneRe.MatchString(s) }
