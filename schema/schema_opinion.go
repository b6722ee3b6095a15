package schema

// OpinionVerdict is the structured answer of the secondary opinion service.
type OpinionVerdict struct {
	Filename      string   `json:"filename"`
	AIProbability float64  `json:"aiProbability"`
	Confidence    float64  `json:"confidence"`
	Signals       []string `json:"signals"`
	Verdict       Verdict  `json:"verdict"`
	Explanation   string   `json:"explanation"`
	Truncated     bool     `json:"truncated"`
}
