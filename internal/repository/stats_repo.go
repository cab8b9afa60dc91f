package repository

import (
	"fmt"

	"linguadrill/internal/database"
	"linguadrill/internal/models"
)

// StatsRepository handles the per-user, per-item answer counters
type StatsRepository struct {
	db *database.DB
}

// NewStatsRepository creates a new statistics repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// RecordOutcome increments the correct or wrong counter for an item,
// creating the row on first use.
func (r *StatsRepository) RecordOutcome(userID, itemID string, correct bool) error {
	correctDelta, wrongDelta := 0, 1
	if correct {
		correctDelta, wrongDelta = 1, 0
	}

	query := r.db.Dialect().UpsertStatisticsQuery()
	if _, err := r.db.Exec(query, userID, itemID, correctDelta, wrongDelta); err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}

// ResetStatistics removes the counters for a single item
func (r *StatsRepository) ResetStatistics(userID, itemID string) error {
	query := "DELETE FROM statistics WHERE user_id = ? AND item_id = ?"
	if _, err := r.db.Exec(query, userID, itemID); err != nil {
		return fmt.Errorf("failed to reset statistics: %w", err)
	}
	return nil
}

// GetAggregates returns the counters for every item the user has
// practiced, keyed by item ID. Items with no attempts are absent.
func (r *StatsRepository) GetAggregates(userID string) (map[string]models.Statistics, error) {
	query := `
		SELECT item_id, correct, wrong
		FROM statistics
		WHERE user_id = ?
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	aggregates := make(map[string]models.Statistics)
	for rows.Next() {
		var itemID string
		var stats models.Statistics
		if err := rows.Scan(&itemID, &stats.Correct, &stats.Wrong); err != nil {
			return nil, fmt.Errorf("failed to scan statistics: %w", err)
		}
		aggregates[itemID] = stats
	}

	return aggregates, rows.Err()
}

// GetOverallStats summarizes a user's progress across all items
func (r *StatsRepository) GetOverallStats(userID string) (*models.OverallStats, error) {
	overall := &models.OverallStats{}

	err := r.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&overall.TotalItems)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	query := `
		SELECT COUNT(*), COALESCE(SUM(correct), 0), COALESCE(SUM(wrong), 0)
		FROM statistics
		WHERE user_id = ?
	`
	err = r.db.QueryRow(query, userID).Scan(
		&overall.ItemsPracticed,
		&overall.TotalCorrect,
		&overall.TotalWrong,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize statistics: %w", err)
	}

	return overall, nil
}
