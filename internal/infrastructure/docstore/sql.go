package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentModel is one row of the documents table
type documentModel struct {
	Path      string `gorm:"primaryKey;size:512"`
	Parent    string `gorm:"size:512;index;not null"`
	Data      string `gorm:"type:text;not null"`
	Version   int64  `gorm:"not null;default:1"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (documentModel) TableName() string {
	return "documents"
}

// GormStore keeps documents in a relational table. Each row carries a
// version that transactions compare before writing, so concurrent writers
// never overwrite each other silently.
type GormStore struct {
	db         *gorm.DB
	maxRetries int
}

var _ Store = (*GormStore)(nil)

// NewGormStore wraps an open GORM connection. The documents table must
// exist, see AutoMigrate and the migrations directory.
func NewGormStore(db *gorm.DB, maxRetries int) *GormStore {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &GormStore{db: db, maxRetries: maxRetries}
}

// AutoMigrate creates the documents table. Production deployments use the
// versioned migrations instead.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&documentModel{})
}

// DB exposes the connection for health checks and pool statistics
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) load(ctx context.Context, path string) (*documentModel, error) {
	var m documentModel
	err := s.db.WithContext(ctx).Where("path = ?", path).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", path, err)
	}
	return &m, nil
}

// Get implements Store
func (s *GormStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, path)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return []byte(m.Data), nil
}

// Set implements Store
func (s *GormStore) Set(ctx context.Context, path string, value any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	data, err := encode(value)
	if err != nil {
		return err
	}
	parent, _ := Split(path)
	now := time.Now().UTC()
	row := documentModel{Path: path, Parent: parent, Data: string(data), Version: 1, UpdatedAt: now}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "path"}},
		DoUpdates: clause.Assignments(map[string]any{
			"data":       row.Data,
			"version":    gorm.Expr("documents.version + 1"),
			"updated_at": now,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save document %s: %w", path, err)
	}
	return nil
}

// Update implements Store
func (s *GormStore) Update(ctx context.Context, path string, fields map[string]any) error {
	_, err := s.Transaction(ctx, path, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, ErrNotFound
		}
		return merge(current, fields)
	})
	return err
}

// Remove implements Store
func (s *GormStore) Remove(ctx context.Context, path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("path = ?", path).Delete(&documentModel{}).Error; err != nil {
		return fmt.Errorf("remove document %s: %w", path, err)
	}
	return nil
}

// Push implements Store
func (s *GormStore) Push(ctx context.Context, parent string, value any) (string, error) {
	id := NewID()
	if err := s.Set(ctx, Join(parent, id), value); err != nil {
		return "", err
	}
	return id, nil
}

// Children implements Store
func (s *GormStore) Children(ctx context.Context, parent string) ([]Document, error) {
	return s.Query(ctx, parent, Query{})
}

// Query implements Store. Siblings share the parent prefix, so ordering by
// path orders them by key.
func (s *GormStore) Query(ctx context.Context, parent string, q Query) ([]Document, error) {
	if err := ValidatePath(parent); err != nil {
		return nil, err
	}
	var rows []documentModel
	tx := s.db.WithContext(ctx).Where("parent = ?", parent).Order("path ASC")
	if q.Field == "" && q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list documents %s: %w", parent, err)
	}
	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		_, key := Split(r.Path)
		docs = append(docs, Document{Key: key, Path: r.Path, Data: []byte(r.Data)})
	}
	return applyQuery(docs, q)
}

// Transaction implements Store
func (s *GormStore) Transaction(ctx context.Context, path string, fn TxFunc) (TxResult, error) {
	if err := ValidatePath(path); err != nil {
		return TxResult{}, err
	}
	parent, _ := Split(path)

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return TxResult{}, err
		}
		m, err := s.load(ctx, path)
		if err != nil {
			return TxResult{}, err
		}
		var current []byte
		if m != nil {
			current = []byte(m.Data)
		}

		next, aborted, err := runTx(fn, current)
		if err != nil {
			return TxResult{}, err
		}
		if aborted {
			return TxResult{Snapshot: current}, nil
		}

		var affected int64
		db := s.db.WithContext(ctx)
		now := time.Now().UTC()
		switch {
		case next == nil && m == nil:
			return TxResult{Committed: true}, nil
		case next == nil:
			res := db.Where("path = ? AND version = ?", path, m.Version).Delete(&documentModel{})
			err, affected = res.Error, res.RowsAffected
		case m == nil:
			row := documentModel{Path: path, Parent: parent, Data: string(next), Version: 1, UpdatedAt: now}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			err, affected = res.Error, res.RowsAffected
		default:
			res := db.Model(&documentModel{}).
				Where("path = ? AND version = ?", path, m.Version).
				Updates(map[string]any{
					"data":       string(next),
					"version":    m.Version + 1,
					"updated_at": now,
				})
			err, affected = res.Error, res.RowsAffected
		}
		if err != nil {
			return TxResult{}, fmt.Errorf("commit document %s: %w", path, err)
		}
		if affected == 0 {
			continue
		}
		return TxResult{Committed: true, Snapshot: next}, nil
	}
	return TxResult{}, ErrTooManyRetries
}

// Ping implements Store
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close implements Store
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
