package models

// InsightType classifies an insight for presentation only; it carries no
// further logic.
type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightDanger  InsightType = "danger"
	InsightInfo    InsightType = "info"
)

// Insight is one rule-triggered business observation. Priority 1 is the
// highest; the engine emits entries sorted by priority ascending, capped at
// five.
type Insight struct {
	Priority int         `json:"priority"`
	Type     InsightType `json:"type"`
	Icon     string      `json:"icon"`
	Title    string      `json:"title"`
	Text     string      `json:"text"`
	Action   string      `json:"action"`
}
