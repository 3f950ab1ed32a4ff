package model

import "strings"

// Summary holds the badge counts shown above a report.
type Summary struct {
	SecurityIssues    int  `json:"security_issues"`
	LintIssues        int  `json:"lint_issues"`
	Suggestions       int  `json:"suggestions"`
	ExactDuplicates   int  `json:"exact_duplicates"`
	SimilarPairs      int  `json:"similar_pairs"`
	ApproxLines       int  `json:"approx_lines"`
	FrameworkDetected bool `json:"framework_detected"`
	NamingFailing     bool `json:"naming_failing"`
	Secure            bool `json:"secure"`
}

// Summarize counts list lengths on r. It never inspects the findings
// themselves.
func Summarize(r *AnalysisResult) Summary {
	if r == nil {
		return Summary{Secure: true}
	}
	security := len(r.OpenPasswords) + len(r.OpenKeys)

	lines := 0
	if r.Overview != "" {
		lines = strings.Count(r.Overview, "\n") + 1
	}

	return Summary{
		SecurityIssues:    security,
		LintIssues:        len(r.LintIssues),
		Suggestions:       len(r.Optimization),
		ExactDuplicates:   len(r.DuplicateCode.ExactDuplicates),
		SimilarPairs:      len(r.DuplicateCode.SimilarBlocks),
		ApproxLines:       lines,
		FrameworkDetected: r.Framework != FrameworkUnknown,
		NamingFailing:     strings.HasPrefix(r.NamingConventions, namingFailPrefix),
		Secure:            security == 0,
	}
}
