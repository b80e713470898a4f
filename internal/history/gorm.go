package history

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantrypal/backend/internal/types"
)

// JSONColumn stores an arbitrary JSON document in a text/jsonb column. A
// row whose document no longer parses scans to null rather than failing the
// whole query, keeping the load path's malformed-data policy intact.
type JSONColumn json.RawMessage

// Value implements the driver.Valuer interface
func (j JSONColumn) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}

// Scan implements the sql.Scanner interface
func (j *JSONColumn) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONColumn(v)
	default:
		*j = nil
	}
	return nil
}

// entryRecord is the gorm row shape for a persisted entry. The seq column
// preserves append order independently of timestamp formatting.
type entryRecord struct {
	Seq           int64      `gorm:"primaryKey;autoIncrement"`
	EntryID       string     `gorm:"size:64;uniqueIndex;not null"`
	Timestamp     string     `gorm:"size:64;not null"`
	Recipe        JSONColumn `gorm:"type:text"`
	RecipeIngs    JSONColumn `gorm:"type:text"`
	ImageURL      string     `gorm:"size:2048"`
	UserIngs      JSONColumn `gorm:"type:text"`
	Substitutions JSONColumn `gorm:"type:text"`
}

func (entryRecord) TableName() string { return "history_entries" }

// GormStore is the database-backed history variant; it works against sqlite
// for local use and postgres for anything bigger, behind the same Store
// contract as the file and Redis variants.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore migrates the history table and returns the store.
func NewGormStore(db *gorm.DB, logger *zap.Logger) (*GormStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&entryRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history table: %w", err)
	}
	return &GormStore{db: db, logger: logger}, nil
}

func (s *GormStore) Load(ctx context.Context) ([]types.Entry, error) {
	var records []entryRecord
	if err := s.db.WithContext(ctx).Order("seq").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	entries := make([]types.Entry, 0, len(records))
	for _, r := range records {
		entry := types.Entry{
			ID:            r.EntryID,
			Timestamp:     r.Timestamp,
			ImageURL:      r.ImageURL,
			UserIngs:      []string{},
			Substitutions: map[string][]string{},
		}
		// Column-level decode failures degrade to zero values, matching
		// the corrupt-file behavior of the other backends.
		if err := json.Unmarshal(r.Recipe, &entry.Recipe); err != nil {
			s.logger.Warn("malformed recipe document in history row",
				zap.String("id", r.EntryID), zap.Error(err))
		}
		if json.Unmarshal(r.RecipeIngs, &entry.RecipeIngs) != nil || entry.RecipeIngs == nil {
			entry.RecipeIngs = []string{}
		}
		if json.Unmarshal(r.UserIngs, &entry.UserIngs) != nil || entry.UserIngs == nil {
			entry.UserIngs = []string{}
		}
		if json.Unmarshal(r.Substitutions, &entry.Substitutions) != nil || entry.Substitutions == nil {
			entry.Substitutions = map[string][]string{}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *GormStore) Save(ctx context.Context, recipe types.Recipe, imageURL string, userIngs []string, subs map[string][]string) (types.Entry, error) {
	entry := newEntry(recipe, imageURL, userIngs, subs)

	record := entryRecord{
		EntryID:   entry.ID,
		Timestamp: entry.Timestamp,
		ImageURL:  entry.ImageURL,
	}
	var err error
	if record.Recipe, err = marshalColumn(entry.Recipe); err != nil {
		return types.Entry{}, err
	}
	if record.RecipeIngs, err = marshalColumn(entry.RecipeIngs); err != nil {
		return types.Entry{}, err
	}
	if record.UserIngs, err = marshalColumn(entry.UserIngs); err != nil {
		return types.Entry{}, err
	}
	if record.Substitutions, err = marshalColumn(entry.Substitutions); err != nil {
		return types.Entry{}, err
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return types.Entry{}, fmt.Errorf("failed to save entry: %w", err)
	}
	return entry, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("entry_id = ?", id).Delete(&entryRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete entry: %w", result.Error)
	}
	return nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&entryRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func marshalColumn(v interface{}) (JSONColumn, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history column: %w", err)
	}
	return JSONColumn(data), nil
}
