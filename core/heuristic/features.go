package heuristic

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Function is a detected function with its body text.
// A body runs from its declaration to the next declaration, or to the end of file.
type Function struct {
	Name      string
	Body      string
	BodyLines int // non-empty lines in the body
	Branches  int
}

// Features is the lexical profile of one file, extracted once and shared by all rules.
type Features struct {
	Lines        []string
	NonEmpty     []string
	CommentLines []string
	Identifiers  []string
	Tokens       []string
	Functions    []Function

	LineLengths  []float64 // rune length of each non-empty line, trailing space removed
	BranchCount  int
	ControlCount int
	CallSites    int
	ImportCount  int
	ExportCount  int
	NestingDepth int
	ErrorHandler int
	Assistant    int // comment lines with assistant-style phrasing
	Redundant    int // comment lines restating an action verb
}

// Extract scans text and builds its Features.
func Extract(text string) *Features {
	f := &Features{Lines: strings.Split(text, "\n")}

	inImportBlock := false
	for _, line := range f.Lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		f.NonEmpty = append(f.NonEmpty, line)
		f.LineLengths = append(f.LineLengths, float64(utf8.RuneCountInString(strings.TrimRight(line, " \t\r"))))

		if IsCommentLine(line) {
			f.CommentLines = append(f.CommentLines, line)
			if redundantRegex.MatchString(line) {
				f.Redundant++
			}
			if assistantRegex.MatchString(line) {
				f.Assistant++
			}
		}

		switch {
		case inImportBlock:
			if strings.HasPrefix(trimmed, ")") {
				inImportBlock = false
			} else if strings.ContainsAny(trimmed, `"'`) {
				f.ImportCount++
			}
		case isImportBlockStart(trimmed):
			inImportBlock = true
		case importStmtRegex.MatchString(line):
			f.ImportCount++
		}
		if exportRegex.MatchString(line) {
			f.ExportCount++
		}
	}

	for _, id := range identRegex.FindAllString(text, -1) {
		if _, ok := keywords[id]; !ok {
			f.Identifiers = append(f.Identifiers, id)
		}
	}
	f.Tokens = tokenRegex.FindAllString(text, -1)
	f.BranchCount = CountBranchTokens(text)
	f.ControlCount = len(controlRegex.FindAllStringIndex(text, -1))
	f.ErrorHandler = len(errorHandlerRegex.FindAllStringIndex(text, -1))
	for _, m := range callSiteRegex.FindAllStringSubmatch(text, -1) {
		if _, ok := keywords[m[1]]; !ok {
			f.CallSites++
		}
	}
	f.NestingDepth = braceDepth(text)
	f.Functions = findFunctions(text)
	return f
}

// braceDepth returns the maximum brace depth reached scanning left to right.
// Unmatched closing braces never take the depth below zero.
func braceDepth(text string) int {
	depth, maxDepth := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return maxDepth
}

type funcStart struct {
	offset int
	name   string
}

func findFunctions(text string) []Function {
	var starts []funcStart
	seen := make(map[int]bool)
	for _, re := range []*regexp.Regexp{funcDeclRegex, funcArrowRegex, funcMethodRegex} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if seen[m[0]] {
				continue
			}
			seen[m[0]] = true
			starts = append(starts, funcStart{offset: m[0], name: text[m[2]:m[3]]})
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].offset < starts[j].offset })

	funcs := make([]Function, 0, len(starts))
	for i, s := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1].offset
		}
		body := text[s.offset:end]
		funcs = append(funcs, Function{
			Name:      s.name,
			Body:      body,
			BodyLines: countNonEmpty(body),
			Branches:  CountBranchTokens(body),
		})
	}
	return funcs
}

func countNonEmpty(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// CommentRatio is the share of non-empty lines that are comments.
func (f *Features) CommentRatio() float64 {
	if len(f.NonEmpty) == 0 {
		return 0
	}
	return float64(len(f.CommentLines)) / float64(len(f.NonEmpty))
}

// LinesOfCode is the non-empty line count.
func (f *Features) LinesOfCode() int {
	return len(f.NonEmpty)
}

// GenericDensity is the share of identifiers that are generic names.
func (f *Features) GenericDensity() float64 {
	if len(f.Identifiers) == 0 {
		return 0
	}
	n := 0
	for _, id := range f.Identifiers {
		if IsGenericName(id) {
			n++
		}
	}
	return float64(n) / float64(len(f.Identifiers))
}

// MeanIdentifierLength is the mean length of non-keyword identifiers.
func (f *Features) MeanIdentifierLength() float64 {
	if len(f.Identifiers) == 0 {
		return 0
	}
	total := 0
	for _, id := range f.Identifiers {
		total += len(id)
	}
	return float64(total) / float64(len(f.Identifiers))
}

// SignificantLines returns distinct normalized lines of at least minLen characters.
func (f *Features) SignificantLines(minLen int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range f.NonEmpty {
		norm := normalizeLine(line)
		if len(norm) >= minLen {
			set[norm] = struct{}{}
		}
	}
	return set
}
