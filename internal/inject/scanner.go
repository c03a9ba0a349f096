// Package inject detects and redacts prompt-injection attempts in text
// produced by content-ingress tools (file reads and web fetches). The
// scanner is stateless: every call operates only on the text it is given.
package inject

import (
	"fmt"
	"regexp"
	"sort"
)

// Match is a single detector hit in the scanned text.
type Match struct {
	Category   Category   `json:"category"`
	Confidence Confidence `json:"confidence"`
	Detector   string     `json:"detector"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Text       string     `json:"text"`
}

// ScanResult is the outcome of scanning one text block.
type ScanResult struct {
	Detected   bool       `json:"detected"`
	Matches    []Match    `json:"matches,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}

// compiledDetector pairs a spec with its compiled regex.
type compiledDetector struct {
	category Category
	spec     DetectorSpec
	re       *regexp.Regexp
}

// Scanner matches text against the category pattern tables.
type Scanner struct {
	version   string
	detectors []compiledDetector
}

// NewScanner compiles the built-in pattern tables. The builtin set is
// known-good; compilation failure is a programmer error.
func NewScanner() *Scanner {
	s, err := NewScannerFromSet(BuiltinPatternSet())
	if err != nil {
		panic(fmt.Sprintf("inject: builtin pattern set: %v", err))
	}
	return s
}

// NewScannerFromSet compiles an arbitrary pattern set, e.g. one loaded from
// a YAML table file. Invalid regexes are rejected with the detector named.
func NewScannerFromSet(set PatternSet) (*Scanner, error) {
	var detectors []compiledDetector
	for _, table := range set.Tables {
		for _, spec := range table.Detectors {
			re, err := regexp.Compile(spec.Pattern)
			if err != nil {
				return nil, fmt.Errorf("inject: compile %s/%s: %w", table.Category, spec.Name, err)
			}
			detectors = append(detectors, compiledDetector{
				category: table.Category,
				spec:     spec,
				re:       re,
			})
		}
	}
	return &Scanner{version: set.Version, detectors: detectors}, nil
}

// Version returns the pattern table version the scanner was built from.
func (s *Scanner) Version() string { return s.version }

// Scan finds all detector matches in text and applies the trigger policy:
// detected is true iff there is at least one high-confidence match, or at
// least two medium-confidence matches spanning at least two distinct
// categories. Two medium matches from the same category never trigger on
// their own; combined weak signals count only across independent pattern
// families.
func (s *Scanner) Scan(text string) ScanResult {
	var matches []Match
	for _, d := range s.detectors {
		for _, loc := range d.re.FindAllStringIndex(text, -1) {
			matches = append(matches, Match{
				Category:   d.category,
				Confidence: d.spec.Confidence,
				Detector:   d.spec.Name,
				Start:      loc[0],
				End:        loc[1],
				Text:       text[loc[0]:loc[1]],
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].End > matches[j].End
	})

	catSet := make(map[Category]bool)
	for _, m := range matches {
		catSet[m.Category] = true
	}
	categories := make([]Category, 0, len(catSet))
	for _, c := range Categories {
		if catSet[c] {
			categories = append(categories, c)
		}
	}

	return ScanResult{
		Detected:   triggered(matches),
		Matches:    matches,
		Categories: categories,
	}
}

// triggered applies the detection threshold to a match list.
func triggered(matches []Match) bool {
	mediumCats := make(map[Category]bool)
	mediumCount := 0

	for _, m := range matches {
		if m.Confidence == ConfidenceHigh {
			return true
		}
		mediumCount++
		mediumCats[m.Category] = true
	}

	return mediumCount >= 2 && len(mediumCats) >= 2
}
