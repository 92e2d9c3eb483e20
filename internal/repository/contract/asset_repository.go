package contract

import (
	"context"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/entity"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/specification"
)

type FieldRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Field, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Field, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type FarmRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Farm, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Farm, error)
}

type TowerRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Tower, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tower, error)
}

type BinRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bin, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bin, error)
}

// SnapshotMetaRepository exposes the ingestion pipeline's version tag.
type SnapshotMetaRepository interface {
	LatestVersion(ctx context.Context) (string, error)
}
