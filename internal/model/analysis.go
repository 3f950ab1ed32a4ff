package model

import (
	"encoding/json"
	"errors"
)

// FrameworkUnknown is the sentinel the analysis service reports when no
// framework was detected.
const FrameworkUnknown = "Unknown"

// namingFailPrefix marks a failing naming_conventions verdict.
const namingFailPrefix = "Fail"

// AnalysisResult is the report returned by the remote analysis service. It is
// consumed read-only; nothing here validates it.
type AnalysisResult struct {
	// Overview is a free-text sample/summary of the analysed code.
	Overview string `json:"overview"`

	Language  string `json:"language"`
	Framework string `json:"framework"`

	// OpenPasswords are [name, value] pairs of hardcoded credentials.
	OpenPasswords []PasswordPair `json:"open_passwords"`
	OpenKeys      []string       `json:"open_keys"`

	Optimization      []string `json:"optimization"`
	NamingConventions string   `json:"naming_conventions"`
	Indentation       string   `json:"indentation"`
	LintIssues        []string `json:"lint_issues"`

	DuplicateCode DuplicateCodeResult `json:"duplicate_code"`

	Status string `json:"status"`
	Error  string `json:"error,omitempty"`

	// Raw is the response body exactly as received.
	Raw json.RawMessage `json:"-"`
}

// PasswordPair is a [name, value] tuple as emitted by the service.
type PasswordPair [2]string

func (p PasswordPair) Name() string  { return p[0] }
func (p PasswordPair) Value() string { return p[1] }

// DuplicateCodeResult groups exact and near duplicates.
type DuplicateCodeResult struct {
	ExactDuplicates []DuplicateBlock `json:"exact_duplicates"`
	SimilarBlocks   []SimilarBlock   `json:"similar_blocks"`
}

// DuplicateBlock is a block of code repeated Count times.
type DuplicateBlock struct {
	Count   int    `json:"count"`
	Example string `json:"example"`
}

// SimilarBlock is a pair of blocks with a similarity ratio in [0,1].
type SimilarBlock struct {
	Similarity float64 `json:"similarity"`
	Block1     string  `json:"block1"`
	Block2     string  `json:"block2"`
}

// DecodeAnalysisResult decodes body into an AnalysisResult and keeps a copy of
// the original bytes in Raw. Only malformed JSON is an error: a field of an
// unexpected type is left at its zero value and the rest is still filled.
func DecodeAnalysisResult(body []byte) (*AnalysisResult, error) {
	var res AnalysisResult
	if err := json.Unmarshal(body, &res); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
	}
	res.Raw = append(json.RawMessage(nil), body...)
	return &res, nil
}

// MarshalJSON returns Raw verbatim when present so a decoded result can be
// forwarded unchanged.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain AnalysisResult
	return json.Marshal(plain(r))
}
