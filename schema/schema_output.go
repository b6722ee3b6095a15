package schema

// Risk label values.
const (
	CriticalValue = "Critical"
	HighValue     = "High"
	ModerateValue = "Moderate"
	LowValue      = "Low"
)

// EnrichedFileAnalysis adds presentation data to a FileAnalysis.
type EnrichedFileAnalysis struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	FileAnalysis
}

// GetPlainLabel returns a plain text label for a [0,1] debt score.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.8:
		return CriticalValue
	case score >= 0.6:
		return HighValue
	case score >= 0.4:
		return ModerateValue
	default:
		return LowValue
	}
}

// EnrichFiles adds rank and label to file analyses in their current order.
// The label follows the mean of technical and cognitive debt.
func EnrichFiles(files []FileAnalysis) []EnrichedFileAnalysis {
	output := make([]EnrichedFileAnalysis, len(files))
	for i, f := range files {
		output[i] = EnrichedFileAnalysis{
			Rank:         i + 1,
			Label:        GetPlainLabel(f.CombinedDebt() / 2),
			FileAnalysis: f,
		}
	}
	return output
}
