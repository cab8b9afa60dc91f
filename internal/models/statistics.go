package models

// Statistics holds the aggregate correct/wrong counts for one item.
type Statistics struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// Attempts returns the total number of recorded outcomes.
func (s Statistics) Attempts() int {
	return s.Correct + s.Wrong
}

// Accuracy returns the fraction of correct outcomes, or 0 when nothing has
// been attempted.
func (s Statistics) Accuracy() float64 {
	total := s.Attempts()
	if total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(total)
}

// OverallStats summarizes a user's progress across all items.
type OverallStats struct {
	TotalItems     int `json:"total_items"`
	ItemsPracticed int `json:"items_practiced"`
	TotalCorrect   int `json:"total_correct"`
	TotalWrong     int `json:"total_wrong"`
}

// Accuracy returns the overall fraction of correct outcomes.
func (s OverallStats) Accuracy() float64 {
	total := s.TotalCorrect + s.TotalWrong
	if total == 0 {
		return 0
	}
	return float64(s.TotalCorrect) / float64(total)
}
