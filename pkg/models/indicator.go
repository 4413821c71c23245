package models

import "time"

// Indicator types populated by the feed integrations. The set is open:
// new feeds may introduce new type labels without a schema change.
const (
	TypeMITRETechnique   = "MITRE Technique"
	TypeCVEVulnerability = "CVE Vulnerability"
	TypeMaliciousURL     = "Malicious URL"
)

// Indicator is a single normalized threat-intelligence fact.
// Rows are created in bulk by feed ingestion and are read-only afterwards;
// a reload replaces the whole table inside one transaction.
type Indicator struct {
	ID             int64     `json:"id"`
	IndicatorType  string    `json:"indicator_type"`
	IndicatorValue string    `json:"indicator_value"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Source         string    `json:"source"`
	SeverityScore  *float64  `json:"severity_score"` // nil when the feed carried no score
	DateAdded      string    `json:"date_added"`     // YYYY-MM-DD
	CreatedAt      time.Time `json:"created_at"`
}

// Severity returns the score, or 0 when absent.
func (i *Indicator) Severity() float64 {
	if i.SeverityScore == nil {
		return 0
	}
	return *i.SeverityScore
}
