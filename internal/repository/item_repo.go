package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"linguadrill/internal/database"
	"linguadrill/internal/models"
)

// ItemRepository handles database operations for practice items and
// their answer fields
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// CreateItem inserts an item together with its answer fields. The ID is
// generated when the caller leaves it empty.
func (r *ItemRepository) CreateItem(item *models.PracticeItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	return r.db.WithTx(func(tx *database.Tx) error {
		query := `
			INSERT INTO items (id, translation, category, created_at)
			VALUES (?, ?, ?, ?)
		`
		if _, err := tx.Exec(query, item.ID, item.Translation, item.Category, item.CreatedAt); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return insertFields(tx, item.ID, item.Fields)
	})
}

// UpdateItem replaces an item's translation, category and answer fields
func (r *ItemRepository) UpdateItem(item *models.PracticeItem) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		query := `
			UPDATE items
			SET translation = ?, category = ?
			WHERE id = ?
		`
		result, err := tx.Exec(query, item.Translation, item.Category, item.ID)
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read update result: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("item %s not found", item.ID)
		}

		if _, err := tx.Exec("DELETE FROM item_fields WHERE item_id = ?", item.ID); err != nil {
			return fmt.Errorf("failed to clear item fields: %w", err)
		}
		return insertFields(tx, item.ID, item.Fields)
	})
}

// DeleteItem removes an item; fields and statistics cascade
func (r *ItemRepository) DeleteItem(id string) error {
	_, err := r.db.Exec("DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// GetItemByID retrieves a single item with its answer fields
func (r *ItemRepository) GetItemByID(id string) (*models.PracticeItem, error) {
	query := `
		SELECT id, translation, category, created_at
		FROM items
		WHERE id = ?
	`
	item := &models.PracticeItem{}
	err := r.db.QueryRow(query, id).Scan(
		&item.ID,
		&item.Translation,
		&item.Category,
		&item.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	fieldsByItem, err := r.loadFields([]string{id})
	if err != nil {
		return nil, err
	}
	item.Fields = fieldsByItem[id]

	return item, nil
}

// GetAllItems retrieves every item with its answer fields, oldest first
func (r *ItemRepository) GetAllItems() ([]models.PracticeItem, error) {
	query := `
		SELECT id, translation, category, created_at
		FROM items
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.PracticeItem
	var ids []string
	for rows.Next() {
		var item models.PracticeItem
		if err := rows.Scan(
			&item.ID,
			&item.Translation,
			&item.Category,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
		ids = append(ids, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fieldsByItem, err := r.loadFields(ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Fields = fieldsByItem[items[i].ID]
	}

	return items, nil
}

// loadFields fetches the answer fields for the given items in display order
func (r *ItemRepository) loadFields(itemIDs []string) (map[string][]models.AnswerField, error) {
	fieldsByItem := make(map[string][]models.AnswerField, len(itemIDs))
	if len(itemIDs) == 0 {
		return fieldsByItem, nil
	}

	query := `
		SELECT item_id, name, prompt, answer
		FROM item_fields
		ORDER BY item_id, position
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query item fields: %w", err)
	}
	defer rows.Close()

	wanted := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}

	for rows.Next() {
		var itemID string
		var field models.AnswerField
		if err := rows.Scan(&itemID, &field.Name, &field.Prompt, &field.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan item field: %w", err)
		}
		if wanted[itemID] {
			fieldsByItem[itemID] = append(fieldsByItem[itemID], field)
		}
	}

	return fieldsByItem, rows.Err()
}

func insertFields(tx *database.Tx, itemID string, fields []models.AnswerField) error {
	query := `
		INSERT INTO item_fields (item_id, name, prompt, answer, position)
		VALUES (?, ?, ?, ?, ?)
	`
	for i, field := range fields {
		if _, err := tx.Exec(query, itemID, field.Name, field.Prompt, field.Answer, i); err != nil {
			return fmt.Errorf("failed to insert field %s: %w", field.Name, err)
		}
	}
	return nil
}
