package implementation

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/entity"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/specification"
	"github.com/dkillam05/farmvista-copilot-sub001/pkg/matching"
)

// GormCandidateSource is the index-assisted candidate pull: a bounded ILIKE
// query over the label columns instead of a full in-memory scan. Used for
// collections queried live.
type GormCandidateSource struct {
	db      *gorm.DB
	numeric matching.NumericPrefixed
}

func NewGormCandidateSource(db *gorm.DB, numeric matching.NumericPrefixed) *GormCandidateSource {
	return &GormCandidateSource{db: db, numeric: numeric}
}

var _ matching.CandidateSource = (*GormCandidateSource)(nil)

func (s *GormCandidateSource) PullCandidates(ctx context.Context, collection string, patterns []string, limit int) ([]*matching.Record, error) {
	specs := []specification.Specification{
		specification.LabelLike{Patterns: patterns},
		specification.OrderByName{},
		specification.LimitBy{N: limit},
	}

	switch collection {
	case "fields":
		rows, err := findAll[entity.Field](ctx, s.db, specs...)
		if err != nil {
			return nil, err
		}
		recs := make([]*matching.Record, 0, len(rows))
		for _, f := range rows {
			recs = append(recs, matching.NewRecord(f.Id, collection, f.Status, []string{f.Name, f.DisplayName, f.Code}, s.numeric))
		}
		return recs, nil
	case "farms":
		rows, err := findAll[entity.Farm](ctx, s.db, specs...)
		if err != nil {
			return nil, err
		}
		recs := make([]*matching.Record, 0, len(rows))
		for _, f := range rows {
			recs = append(recs, matching.NewRecord(f.Id, collection, f.Status, []string{f.Name, f.DisplayName}, s.numeric))
		}
		return recs, nil
	case "towers":
		rows, err := findAll[entity.Tower](ctx, s.db, specs...)
		if err != nil {
			return nil, err
		}
		recs := make([]*matching.Record, 0, len(rows))
		for _, t := range rows {
			recs = append(recs, matching.NewRecord(t.Id, collection, t.Status, []string{t.Name, t.DisplayName}, s.numeric))
		}
		return recs, nil
	case "bins":
		rows, err := findAll[entity.Bin](ctx, s.db, specs...)
		if err != nil {
			return nil, err
		}
		recs := make([]*matching.Record, 0, len(rows))
		for _, b := range rows {
			recs = append(recs, matching.NewRecord(b.Id, collection, b.Status, []string{b.Name, b.DisplayName}, s.numeric))
		}
		return recs, nil
	default:
		return nil, fmt.Errorf("%w: %q", matching.ErrUnknownCollection, collection)
	}
}
