package demoserver

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/codeprobe/internal/model"
)

const (
	overviewLines    = 20
	maxLineLength    = 100
	minDuplicateLen  = 8
	similarThreshold = 0.8
	maxSimilarPairs  = 5
	maxCompareLines  = 200
)

var (
	passwordRe = regexp.MustCompile(`(?i)\b(\w*pass(?:word|wd)?\w*)\s*[:=]\s*['"]([^'"]+)['"]`)
	awsKeyRe   = regexp.MustCompile(`AKIA[0-9A-Z]{16}`)
	secretRe   = regexp.MustCompile(`(?i)\b(?:api[_-]?key|secret(?:_key)?|token)\s*[:=]\s*['"]([^'"]{8,})['"]`)
	camelDefRe = regexp.MustCompile(`(?m)^\s*def\s+[a-z]+[A-Z]\w*\s*\(`)
)

var extLanguages = map[string]string{
	".py":   "Python",
	".js":   "JavaScript",
	".ts":   "TypeScript",
	".go":   "Go",
	".java": "Java",
	".rb":   "Ruby",
	".php":  "PHP",
}

var frameworks = []struct{ marker, name string }{
	{"flask", "Flask"},
	{"django", "Django"},
	{"fastapi", "FastAPI"},
	{"express", "Express"},
	{"react", "React"},
	{"spring", "Spring"},
}

// Analyze produces a report for code. name is the uploaded file name, or
// empty for pasted text. Every check is a line-based heuristic.
func Analyze(name, code string) *model.AnalysisResult {
	lines := strings.Split(code, "\n")

	res := &model.AnalysisResult{
		Overview:          overview(lines),
		Language:          language(name, code),
		Framework:         framework(code),
		OpenPasswords:     []model.PasswordPair{},
		OpenKeys:          []string{},
		Optimization:      optimizations(code),
		NamingConventions: naming(code),
		Indentation:       indentation(lines),
		LintIssues:        lint(lines),
		DuplicateCode: model.DuplicateCodeResult{
			ExactDuplicates: exactDuplicates(lines),
			SimilarBlocks:   similarLines(lines),
		},
		Status: "success",
	}

	for _, m := range passwordRe.FindAllStringSubmatch(code, -1) {
		res.OpenPasswords = append(res.OpenPasswords, model.PasswordPair{m[1], m[2]})
	}
	res.OpenKeys = append(res.OpenKeys, awsKeyRe.FindAllString(code, -1)...)
	for _, m := range secretRe.FindAllStringSubmatch(code, -1) {
		res.OpenKeys = append(res.OpenKeys, m[1])
	}
	return res
}

func overview(lines []string) string {
	if len(lines) > overviewLines {
		lines = lines[:overviewLines]
	}
	return strings.Join(lines, "\n")
}

func language(name, code string) string {
	if lang, ok := extLanguages[strings.ToLower(filepath.Ext(name))]; ok {
		return lang
	}
	switch {
	case strings.Contains(code, "def ") || strings.Contains(code, "import "):
		return "Python"
	case strings.Contains(code, "function ") || strings.Contains(code, "const "):
		return "JavaScript"
	case strings.Contains(code, "package main"):
		return "Go"
	}
	return "Unknown"
}

func framework(code string) string {
	lower := strings.ToLower(code)
	for _, f := range frameworks {
		if strings.Contains(lower, f.marker) {
			return f.name
		}
	}
	return model.FrameworkUnknown
}

func optimizations(code string) []string {
	out := []string{}
	if strings.Contains(code, "range(len(") {
		out = append(out, "Use enumerate() instead of range(len(...))")
	}
	if strings.Contains(code, "import *") {
		out = append(out, "Avoid wildcard imports")
	}
	if strings.Contains(code, "except:") {
		out = append(out, "Catch specific exceptions instead of a bare except")
	}
	return out
}

func naming(code string) string {
	if camelDefRe.MatchString(code) {
		return "Fail: camelCase function names found"
	}
	return "Pass: consistent naming"
}

func indentation(lines []string) string {
	tabs, spaces := false, false
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "\t"):
			tabs = true
		case strings.HasPrefix(l, " "):
			spaces = true
		}
	}
	switch {
	case tabs && spaces:
		return "Mixed tabs and spaces"
	case tabs:
		return "Tabs"
	case spaces:
		return "Spaces"
	}
	return "No indentation"
}

func lint(lines []string) []string {
	out := []string{}
	for i, l := range lines {
		n := i + 1
		if strings.TrimRight(l, " \t") != l {
			out = append(out, fmt.Sprintf("line %d: trailing whitespace", n))
		}
		if len(l) > maxLineLength {
			out = append(out, fmt.Sprintf("line %d: line too long (%d > %d)", n, len(l), maxLineLength))
		}
	}
	return out
}

func exactDuplicates(lines []string) []model.DuplicateBlock {
	counts := map[string]int{}
	var order []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if len(t) < minDuplicateLen {
			continue
		}
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}

	out := []model.DuplicateBlock{}
	for _, t := range order {
		if counts[t] > 1 {
			out = append(out, model.DuplicateBlock{Count: counts[t], Example: t})
		}
	}
	return out
}

// similarLines pairs distinct lines whose Levenshtein similarity is at
// least similarThreshold.
func similarLines(lines []string) []model.SimilarBlock {
	var uniq []string
	seen := map[string]bool{}
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if len(t) < minDuplicateLen || seen[t] {
			continue
		}
		seen[t] = true
		uniq = append(uniq, t)
		if len(uniq) == maxCompareLines {
			break
		}
	}

	dmp := diffmatchpatch.New()
	out := []model.SimilarBlock{}
	for i := 0; i < len(uniq); i++ {
		for j := i + 1; j < len(uniq); j++ {
			a, b := uniq[i], uniq[j]
			longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
			dist := dmp.DiffLevenshtein(dmp.DiffMain(a, b, false))
			sim := 1 - float64(dist)/float64(longest)
			if sim < similarThreshold {
				continue
			}
			out = append(out, model.SimilarBlock{Similarity: sim, Block1: a, Block2: b})
			if len(out) == maxSimilarPairs {
				return out
			}
		}
	}
	return out
}
