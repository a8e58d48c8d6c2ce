package models

// PromotionResult summarises one promotion batch: how many students moved up,
// repeated or graduated, plus per-student errors for those skipped.
type PromotionResult struct {
	Promoted  int      `json:"promoted"`
	Repeating int      `json:"repeating"`
	Graduated int      `json:"graduated"`
	Errors    []string `json:"errors"`
}
