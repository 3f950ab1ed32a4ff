// Package report renders an analysis result for terminals and the dashboard.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/raysh454/codeprobe/internal/model"
)

// Percent formats a similarity ratio as a percentage with one decimal.
func Percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FrameworkLabel returns the framework or "None detected".
func FrameworkLabel(r *model.AnalysisResult) string {
	if r.Framework == model.FrameworkUnknown || r.Framework == "" {
		return "None detected"
	}
	return r.Framework
}

// Text writes a human-readable report.
func Text(w io.Writer, r *model.AnalysisResult) error {
	if r == nil {
		return fmt.Errorf("nil result")
	}
	s := model.Summarize(r)
	var sb strings.Builder

	sb.WriteString("== Overview ==\n")
	fmt.Fprintf(&sb, "Language:   %s\n", r.Language)
	fmt.Fprintf(&sb, "Framework:  %s\n", FrameworkLabel(r))
	if s.ApproxLines > 0 {
		fmt.Fprintf(&sb, "Lines:      %d (approx sample)\n", s.ApproxLines)
	} else {
		sb.WriteString("Lines:      N/A\n")
	}
	if s.Secure {
		sb.WriteString("Security:   Secure\n")
	} else {
		fmt.Fprintf(&sb, "Security:   %d Issues\n", s.SecurityIssues)
	}
	fmt.Fprintf(&sb, "Counts:     security=%d lint=%d suggestions=%d duplicates=%d\n",
		s.SecurityIssues, s.LintIssues, s.Suggestions, s.ExactDuplicates)

	sb.WriteString("\n== Code Quality ==\n")
	naming := "OK"
	if s.NamingFailing {
		naming = "FAIL"
	}
	fmt.Fprintf(&sb, "Naming:      [%s] %s\n", naming, r.NamingConventions)
	fmt.Fprintf(&sb, "Indentation: %s\n", r.Indentation)

	if !s.Secure {
		sb.WriteString("\n== Security Findings ==\n")
		for _, p := range r.OpenPasswords {
			fmt.Fprintf(&sb, "  [password] %s = %s\n", p.Name(), p.Value())
		}
		for _, k := range r.OpenKeys {
			fmt.Fprintf(&sb, "  [key] %s\n", k)
		}
	}

	sb.WriteString("\n== Lint Issues ==\n")
	if len(r.LintIssues) == 0 {
		sb.WriteString("  No lint issues found.\n")
	}
	for _, issue := range r.LintIssues {
		fmt.Fprintf(&sb, "  - %s\n", issue)
	}

	sb.WriteString("\n== Optimization ==\n")
	if len(r.Optimization) == 0 {
		sb.WriteString("  No suggestions.\n")
	}
	for _, o := range r.Optimization {
		fmt.Fprintf(&sb, "  - %s\n", o)
	}

	fmt.Fprintf(&sb, "\n== Duplicate Code (%d found) ==\n", s.ExactDuplicates)
	for _, d := range r.DuplicateCode.ExactDuplicates {
		fmt.Fprintf(&sb, "  x%d: %s\n", d.Count, d.Example)
	}
	if s.SimilarPairs > 0 {
		fmt.Fprintf(&sb, "\n== Similar Blocks (%d pairs found) ==\n", s.SimilarPairs)
		for i, b := range r.DuplicateCode.SimilarBlocks {
			fmt.Fprintf(&sb, "  #%d Similarity Match: %s\n", i+1, Percent(b.Similarity))
			for _, line := range BlockDiff(b.Block1, b.Block2) {
				fmt.Fprintf(&sb, "    %s %s\n", marker(line.Kind), line.Text)
			}
		}
	}

	if r.Status != "" {
		fmt.Fprintf(&sb, "\nStatus: %s\n", r.Status)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// JSON writes the result as received from the service.
func JSON(w io.Writer, r *model.AnalysisResult) error {
	if r == nil {
		return fmt.Errorf("nil result")
	}
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

func marker(k LineKind) string {
	switch k {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	}
	return " "
}
