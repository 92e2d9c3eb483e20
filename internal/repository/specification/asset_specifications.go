package specification

import (
	"strings"

	"gorm.io/gorm"
)

type ByID struct {
	ID string
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type ByFarmID struct {
	FarmID string
}

func (s ByFarmID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("farm_id = ?", s.FarmID)
}

type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = '' OR status IS NULL OR lower(status) = 'active'")
}

// LabelLike broadens free-text patterns into ILIKE terms over the label
// columns, for the index-assisted candidate pull.
type LabelLike struct {
	Patterns []string
}

func (s LabelLike) Apply(db *gorm.DB) *gorm.DB {
	var clauses []string
	var args []interface{}
	for _, p := range s.Patterns {
		if p == "" {
			continue
		}
		like := "%" + p + "%"
		clauses = append(clauses, "name ILIKE ? OR display_name ILIKE ?")
		args = append(args, like, like)
	}
	if len(clauses) == 0 {
		return db
	}
	return db.Where(strings.Join(clauses, " OR "), args...)
}

type LimitBy struct {
	N int
}

func (s LimitBy) Apply(db *gorm.DB) *gorm.DB {
	if s.N <= 0 {
		return db
	}
	return db.Limit(s.N)
}

type OrderByName struct{}

func (s OrderByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}
