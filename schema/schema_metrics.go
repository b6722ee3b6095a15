package schema

// MetricDefinition describes one named sub-metric for display purposes.
type MetricDefinition struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Component string `json:"component"`
	Meaning   string `json:"meaning"`
}

// MetricsRenderModel contains all data needed for displaying metric definitions.
type MetricsRenderModel struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Metrics     []MetricDefinition `json:"metrics"`
	Formulas    map[string]string  `json:"formulas"`
}

// Component names used in metric definitions.
const (
	PatternComponent   = "pattern"
	TechnicalComponent = "technical"
	CognitiveComponent = "cognitive"
	DerivedComponent   = "derived"
)

// MetricDefinitions lists every sub-metric in FileMetrics, in field order.
var MetricDefinitions = []MetricDefinition{
	{"sus", "Structural uniformity", PatternComponent, "Share of function bodies that are near-duplicates after identifier erasure"},
	{"tdd", "Token distribution divergence", PatternComponent, "Share of token volume held by the 10 most frequent tokens"},
	{"pri", "Pattern repetition index", PatternComponent, "Lines repeated two or more times relative to 10% of non-empty lines"},
	{"crs", "Comment redundancy score", PatternComponent, "Share of comments that restate an action verb"},
	{"scs", "Style consistency score", PatternComponent, "One minus normalized line-length deviation (files over 20 lines)"},
	{"gid", "Generic identifier density", PatternComponent, "Density of placeholder names such as data, result, temp"},
	{"lle", "Line-length entropy", PatternComponent, "How uniform line lengths are across length buckets"},
	{"ddp", "Defect density proxy", TechnicalComponent, "Issue signals per hundred lines"},
	{"mds", "Modularity degradation score", TechnicalComponent, "Imports relative to exports"},
	{"ccd", "Control-flow density", CognitiveComponent, "Control-flow keywords per line"},
	{"es", "Explainability", CognitiveComponent, "Mean identifier length over 12"},
	{"aes", "Line-length entropy", CognitiveComponent, "Line-length standard deviation over 40"},
	{"rdi", "Comment ratio step", CognitiveComponent, "0.8 when comment-heavy, 0.55 when bare, 0.3 otherwise"},
	{"cli", "Cognitive load index", CognitiveComponent, "Nesting, branching density and function length"},
	{"ias", "Identifier ambiguity", CognitiveComponent, "Density of very short and generic identifiers"},
	{"ags", "Abstraction gap", CognitiveComponent, "Mismatch between function name length and per-function branching"},
	{"ri", "Readability index", CognitiveComponent, "Line length, nesting and low explainability"},
	{"csc", "Context switching cost", CognitiveComponent, "Imports plus call-site density"},
	{"dps", "Debt propagation score", DerivedComponent, "0.6 technical debt plus 0.4 AI likelihood"},
	{"dli", "Debt locality index", DerivedComponent, "Half technical debt plus half control-flow density"},
	{"drf", "Debt risk factor", DerivedComponent, "Line entropy, technical debt and AI likelihood"},
}

// MetricFormulas summarizes how headline scores are derived.
var MetricFormulas = map[string]string{
	"ai_likelihood":        "clamp(max(score + 0.05, 0.25*SUS + 0.20*PRI + 0.20*CRS + 0.15*GID + 0.20*LLE))",
	"ai_debt_contribution": "round(8 + 35*L) if L < 0.4 else round(45 + 55*L)",
	"technical_debt":       "clamp(sum of tiered complexity, nesting, size, function, duplication and modularity weights)",
	"cognitive_debt":       "clamp(0.12*CCD + 0.10*(1-ES) + 0.10*AES + 0.10*RDI + 0.15*CLI + 0.12*IAS + 0.10*AGS + 0.11*RI + 0.10*CSC)",
	"propagation_score":    "DPS",
}

// NewMetricsRenderModel builds the display model for metric definitions.
func NewMetricsRenderModel() MetricsRenderModel {
	return MetricsRenderModel{
		Title:       "debtlens metrics",
		Description: "Every score is a bounded lexical heuristic in [0,1]. Scores are approximate signals, not verified facts.",
		Metrics:     MetricDefinitions,
		Formulas:    MetricFormulas,
	}
}
