// Package heuristic converts raw file text into bounded debt and AI-likelihood scores
// using lexical signals only.
package heuristic

import (
	"math"
	"regexp"
	"strings"
)

var (
	identRegex    = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	tokenRegex    = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*|\d+(?:\.\d+)?|[^\s\w]`)
	branchRegex   = regexp.MustCompile(`\b(?:if|elif|for|while|case|catch|except)\b|&&|\|\|`)
	controlRegex  = regexp.MustCompile(`\b(?:if|else|for|while|switch|case|break|continue|return|goto|try|catch|throw|yield|await)\b`)
	callSiteRegex = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	stringRegex   = regexp.MustCompile("\"(?:[^\"\\\\\\n]|\\\\.)*\"|'(?:[^'\\\\\\n]|\\\\.)*'|`[^`]*`")
	numberRegex   = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	spaceRegex    = regexp.MustCompile(`\s+`)

	commentRegex      = regexp.MustCompile(`^\s*(?://|#|/\*|\*|--|<!--)`)
	preprocessorRegex = regexp.MustCompile(`^\s*#\s*(?:include|define|import|pragma|if|ifdef|ifndef|endif|else|elif|undef)\b`)
	redundantRegex    = regexp.MustCompile(`(?i)^\s*(?://|#|/\*|\*|--)\s*(?:get|set|create|return|initialize|init|update|delete|check|handle|add|remove|call|loop|increment|define|import|calculate|process|validate|fetch|load|save|convert|parse)s?\b`)
	assistantRegex    = regexp.MustCompile(`(?i)\b(?:here'?s|this (?:function|method|code) (?:will|is used to|handles)|note that|in this example|as an ai|comprehensive|robust|seamless(?:ly)?|leverag(?:e|es|ing)|ensure that|step \d+:)`)
	errorHandlerRegex = regexp.MustCompile(`\bcatch\b|\bexcept\b|if\s+err\s*!=\s*nil|\.catch\(|\brescue\b`)

	importStmtRegex = regexp.MustCompile(`^\s*(?:import\b|from\s+\S+\s+import\b|#\s*include\b|using\s+[\w.]+\s*;|use\s+[\w:]+|.*\brequire\s*\(\s*['"])`)
	quotedRefRegex  = regexp.MustCompile(`["']([^"'\s]+)["']`)
	exportRegex     = regexp.MustCompile(`^\s*(?:export\b|module\.exports|exports\.\w+|pub\s+(?:fn|struct|enum|trait|mod)\b|func\s+(?:\([^)]*\)\s*)?[A-Z]\w*|type\s+[A-Z]\w*|public\b)`)

	funcDeclRegex   = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:async[ \t]+)?(?:func(?:[ \t]*\([^)\n]*\))?|function\*?|def|fn)[ \t]+([A-Za-z_]\w*)[ \t]*[(<\[]`)
	funcArrowRegex  = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:const|let|var)[ \t]+([A-Za-z_]\w*)[ \t]*=[ \t]*(?:async[ \t]*)?(?:\([^)\n]*\)|[A-Za-z_]\w*)[ \t]*=>`)
	funcMethodRegex = regexp.MustCompile(`(?m)^[ \t]*(?:public|private|protected|static|internal)[ \t]+(?:[\w<>\[\], \t]+?[ \t]+)?([A-Za-z_]\w*)[ \t]*\(`)
)

// keywords are excluded from identifier statistics.
var keywords = toSet(
	"if", "else", "elif", "for", "while", "do", "switch", "case", "break", "continue", "return", "goto",
	"func", "function", "def", "fn", "var", "let", "const", "class", "struct", "interface", "type", "enum",
	"import", "from", "export", "package", "module", "require", "use", "using", "namespace",
	"public", "private", "protected", "static", "internal", "final", "abstract", "override", "virtual",
	"new", "this", "self", "super", "extends", "implements", "typeof", "instanceof", "delete", "void",
	"true", "false", "null", "nil", "None", "True", "False", "undefined",
	"try", "catch", "except", "finally", "throw", "throws", "raise", "rescue",
	"async", "await", "yield", "in", "of", "is", "not", "and", "or", "with", "as", "lambda", "pass",
	"go", "defer", "select", "chan", "range", "map", "default", "fallthrough",
	"int", "string", "bool", "float", "double", "char", "byte", "long", "short", "error", "any",
	"impl", "pub", "mut", "match", "where", "trait", "mod", "crate",
)

// genericNames are placeholder identifiers that carry little meaning.
var genericNames = toSet(
	"data", "result", "temp", "tmp", "value", "val", "item", "obj", "info", "res", "ret",
	"foo", "bar", "baz", "handler", "manager", "helper", "util", "utils", "stuff", "thing",
	"arr", "list", "str", "num", "input", "output", "response", "payload", "obj1", "data1", "item1",
)

// shortAllowed are short identifiers that are conventional rather than ambiguous.
var shortAllowed = toSet(
	"if", "in", "is", "of", "or", "to", "do", "go", "fn", "as", "at", "by",
	"id", "ok", "up", "on", "no", "db", "io", "os",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsGenericName reports whether an identifier is a placeholder name.
func IsGenericName(name string) bool {
	_, ok := genericNames[strings.ToLower(name)]
	return ok
}

// IsCommentLine reports whether a line is a comment line.
func IsCommentLine(line string) bool {
	return commentRegex.MatchString(line) && !preprocessorRegex.MatchString(line)
}

// CountBranchTokens returns the number of branch and logical-operator tokens in text.
func CountBranchTokens(text string) int {
	return len(branchRegex.FindAllStringIndex(text, -1))
}

// CountGenericNames returns the number of generic identifier occurrences in text.
func CountGenericNames(text string) int {
	n := 0
	for _, id := range identRegex.FindAllString(text, -1) {
		if IsGenericName(id) {
			n++
		}
	}
	return n
}

// ImportRefs returns quoted module references from import and require statements.
func ImportRefs(text string) []string {
	var refs []string
	inBlock := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case inBlock:
			if strings.HasPrefix(trimmed, ")") {
				inBlock = false
				continue
			}
		case isImportBlockStart(trimmed):
			inBlock = true
			continue
		case !importStmtRegex.MatchString(line):
			continue
		}
		for _, m := range quotedRefRegex.FindAllStringSubmatch(line, -1) {
			refs = append(refs, m[1])
		}
	}
	return refs
}

func isImportBlockStart(trimmed string) bool {
	return strings.HasPrefix(trimmed, "import (") || trimmed == "import("
}

// Clamp bounds v to [lo, hi]. NaN is treated as lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	acc := 0.0
	for _, v := range values {
		acc += (v - m) * (v - m)
	}
	return math.Sqrt(acc / float64(len(values)))
}

// ratio divides num by den, guarding the denominator at 1.
func ratio(num, den float64) float64 {
	return num / math.Max(den, 1)
}

// normalizeBody erases identifiers, literals and whitespace so that
// structurally identical code compares equal.
func normalizeBody(body string) string {
	out := stringRegex.ReplaceAllString(body, "s")
	out = numberRegex.ReplaceAllString(out, "0")
	out = identRegex.ReplaceAllStringFunc(out, func(id string) string {
		if _, ok := keywords[id]; ok {
			return id
		}
		return "id"
	})
	return strings.TrimSpace(spaceRegex.ReplaceAllString(out, " "))
}

// normalizeLine collapses whitespace within a trimmed line.
func normalizeLine(line string) string {
	return spaceRegex.ReplaceAllString(strings.TrimSpace(line), " ")
}
