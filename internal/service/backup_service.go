package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"linguadrill/internal/database"
	"linguadrill/internal/models"
	"linguadrill/internal/repository"
)

// BackupData is the complete portable backup structure. Statistics rows
// reference users and items by their IDs.
type BackupData struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Users      []UserBackup   `json:"users"`
	Items      []ItemBackup   `json:"items"`
	Statistics []StatsBackup  `json:"statistics"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ItemBackup represents a practice item with its answer fields
type ItemBackup struct {
	ID          string               `json:"id"`
	Translation string               `json:"translation"`
	Category    string               `json:"category"`
	Fields      []models.AnswerField `json:"fields"`
	CreatedAt   time.Time            `json:"created_at"`
}

// StatsBackup represents one user's counters for one item
type StatsBackup struct {
	UserID  string `json:"user_id"`
	ItemID  string `json:"item_id"`
	Correct int    `json:"correct"`
	Wrong   int    `json:"wrong"`
}

// BackupService handles database export and restore
type BackupService struct {
	db        *database.DB
	userRepo  *repository.UserRepository
	itemRepo  *repository.ItemRepository
	statsRepo *repository.StatsRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, userRepo *repository.UserRepository, itemRepo *repository.ItemRepository, statsRepo *repository.StatsRepository) *BackupService {
	return &BackupService{
		db:        db,
		userRepo:  userRepo,
		itemRepo:  itemRepo,
		statsRepo: statsRepo,
	}
}

// Export writes the whole database as JSON
func (s *BackupService) Export(w io.Writer) error {
	backup := BackupData{
		Version:    "1",
		ExportedAt: time.Now(),
	}

	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	for _, user := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:           user.ID,
			Email:        user.Email,
			Name:         user.Name,
			PasswordHash: user.PasswordHash,
			CreatedAt:    user.CreatedAt,
		})
	}

	items, err := s.itemRepo.GetAllItems()
	if err != nil {
		return fmt.Errorf("failed to export items: %w", err)
	}
	for _, item := range items {
		backup.Items = append(backup.Items, ItemBackup{
			ID:          item.ID,
			Translation: item.Translation,
			Category:    item.Category,
			Fields:      item.Fields,
			CreatedAt:   item.CreatedAt,
		})
	}

	stats, err := s.exportStatistics()
	if err != nil {
		return err
	}
	backup.Statistics = stats

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported %d users, %d items, %d statistics rows",
		len(backup.Users), len(backup.Items), len(backup.Statistics))
	return nil
}

// Import restores a backup into an empty database. Existing rows with
// the same IDs cause the import to fail rather than merge.
func (s *BackupService) Import(r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != "1" {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	err := s.db.WithTx(func(tx *database.Tx) error {
		for _, user := range backup.Users {
			query := `
				INSERT INTO users (id, email, name, password_hash, created_at)
				VALUES (?, ?, ?, ?, ?)
			`
			if _, err := tx.Exec(query, user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt); err != nil {
				return fmt.Errorf("failed to import user %s: %w", user.Email, err)
			}
		}

		for _, item := range backup.Items {
			query := `
				INSERT INTO items (id, translation, category, created_at)
				VALUES (?, ?, ?, ?)
			`
			if _, err := tx.Exec(query, item.ID, item.Translation, item.Category, item.CreatedAt); err != nil {
				return fmt.Errorf("failed to import item %s: %w", item.Translation, err)
			}
			for i, field := range item.Fields {
				query := `
					INSERT INTO item_fields (item_id, name, prompt, answer, position)
					VALUES (?, ?, ?, ?, ?)
				`
				if _, err := tx.Exec(query, item.ID, field.Name, field.Prompt, field.Answer, i); err != nil {
					return fmt.Errorf("failed to import field %s of %s: %w", field.Name, item.Translation, err)
				}
			}
		}

		for _, row := range backup.Statistics {
			query := `
				INSERT INTO statistics (user_id, item_id, correct, wrong)
				VALUES (?, ?, ?, ?)
			`
			if _, err := tx.Exec(query, row.UserID, row.ItemID, row.Correct, row.Wrong); err != nil {
				return fmt.Errorf("failed to import statistics for item %s: %w", row.ItemID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Imported %d users, %d items, %d statistics rows",
		len(backup.Users), len(backup.Items), len(backup.Statistics))
	return nil
}

func (s *BackupService) exportStatistics() ([]StatsBackup, error) {
	rows, err := s.db.Query("SELECT user_id, item_id, correct, wrong FROM statistics")
	if err != nil {
		return nil, fmt.Errorf("failed to export statistics: %w", err)
	}
	defer rows.Close()

	var stats []StatsBackup
	for rows.Next() {
		var row StatsBackup
		if err := rows.Scan(&row.UserID, &row.ItemID, &row.Correct, &row.Wrong); err != nil {
			return nil, fmt.Errorf("failed to scan statistics: %w", err)
		}
		stats = append(stats, row)
	}
	return stats, rows.Err()
}
