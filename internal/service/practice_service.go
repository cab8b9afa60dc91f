package service

import (
	"fmt"
	"log"
	"sync"

	"linguadrill/internal/engine"
	"linguadrill/internal/models"
	"linguadrill/internal/repository"
)

// PracticeService builds practice sessions on top of the item and
// statistics repositories.
type PracticeService struct {
	itemRepo  *repository.ItemRepository
	statsRepo *repository.StatsRepository

	// Mastery thresholds: an item is considered mastered once it has at
	// least masteryMinCorrect correct answers and its accuracy reaches
	// masteryAccuracy. Mastered items are hidden from practice until a
	// refresh after their statistics change.
	masteryMinCorrect int
	masteryAccuracy   float64
}

// NewPracticeService creates a new practice service
func NewPracticeService(itemRepo *repository.ItemRepository, statsRepo *repository.StatsRepository, masteryMinCorrect int, masteryAccuracy float64) *PracticeService {
	return &PracticeService{
		itemRepo:          itemRepo,
		statsRepo:         statsRepo,
		masteryMinCorrect: masteryMinCorrect,
		masteryAccuracy:   masteryAccuracy,
	}
}

// NewSession loads the user's items and statistics and assembles a
// practice session bound to their statistics rows.
func (s *PracticeService) NewSession(userID string) (*engine.Session, error) {
	items, err := s.itemRepo.GetAllItems()
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	cache := &statsCache{}
	if err := cache.reload(s.statsRepo, userID); err != nil {
		return nil, err
	}

	session := engine.NewSession(engine.SessionConfig{
		Items:         items,
		Backend:       &userBackend{statsRepo: s.statsRepo, userID: userID},
		GetStatistics: cache.get,
		Filter:        notMastered(s.masteryMinCorrect, s.masteryAccuracy, cache.get),
		Refetch: func() {
			if err := cache.reload(s.statsRepo, userID); err != nil {
				log.Printf("Failed to refresh statistics for user %s: %v", userID, err)
			}
		},
	})

	return session, nil
}

// ItemsWithStats loads every item together with the user's aggregates,
// for the initial session fetch.
func (s *PracticeService) ItemsWithStats(userID string) ([]models.PracticeItem, map[string]models.Statistics, error) {
	items, err := s.itemRepo.GetAllItems()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load items: %w", err)
	}
	aggregates, err := s.statsRepo.GetAggregates(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load statistics: %w", err)
	}
	return items, aggregates, nil
}

// OverallStats summarizes the user's progress across all items
func (s *PracticeService) OverallStats(userID string) (*models.OverallStats, error) {
	return s.statsRepo.GetOverallStats(userID)
}

// notMastered returns the visibility predicate for practice items: an
// item stays in rotation until it crosses both mastery thresholds.
func notMastered(minCorrect int, minAccuracy float64, get func(string) models.Statistics) func(models.PracticeItem) bool {
	return func(item models.PracticeItem) bool {
		stats := get(item.ID)
		if stats.Correct < minCorrect {
			return true
		}
		return stats.Accuracy() < minAccuracy
	}
}

// statsCache holds one user's aggregates so the session can read them
// without a query per render.
type statsCache struct {
	mu   sync.RWMutex
	data map[string]models.Statistics
}

func (c *statsCache) get(itemID string) models.Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[itemID]
}

func (c *statsCache) reload(statsRepo *repository.StatsRepository, userID string) error {
	aggregates, err := statsRepo.GetAggregates(userID)
	if err != nil {
		return fmt.Errorf("failed to load statistics: %w", err)
	}

	c.mu.Lock()
	c.data = aggregates
	c.mu.Unlock()
	return nil
}

// userBackend binds the session's outcome commits to one user's rows.
type userBackend struct {
	statsRepo *repository.StatsRepository
	userID    string
}

func (b *userBackend) SubmitOutcome(itemID string, correct bool) error {
	return b.statsRepo.RecordOutcome(b.userID, itemID, correct)
}

func (b *userBackend) ResetStatistics(itemID string) error {
	return b.statsRepo.ResetStatistics(b.userID, itemID)
}
