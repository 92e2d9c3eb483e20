package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/entity"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/contract"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/specification"
)

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func findOne[T any](ctx context.Context, db *gorm.DB, specs ...specification.Specification) (*T, error) {
	var out T
	q := applySpecifications(db.WithContext(ctx).Model(new(T)), specs...)
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, db *gorm.DB, specs ...specification.Specification) ([]*T, error) {
	var out []*T
	q := applySpecifications(db.WithContext(ctx).Model(new(T)), specs...)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type FieldRepositoryImpl struct {
	db *gorm.DB
}

func NewFieldRepository(db *gorm.DB) contract.FieldRepository {
	return &FieldRepositoryImpl{db: db}
}

func (r *FieldRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Field, error) {
	return findOne[entity.Field](ctx, r.db, specs...)
}

func (r *FieldRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Field, error) {
	return findAll[entity.Field](ctx, r.db, specs...)
}

func (r *FieldRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var n int64
	q := applySpecifications(r.db.WithContext(ctx).Model(&entity.Field{}), specs...)
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

type FarmRepositoryImpl struct {
	db *gorm.DB
}

func NewFarmRepository(db *gorm.DB) contract.FarmRepository {
	return &FarmRepositoryImpl{db: db}
}

func (r *FarmRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Farm, error) {
	return findOne[entity.Farm](ctx, r.db, specs...)
}

func (r *FarmRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Farm, error) {
	return findAll[entity.Farm](ctx, r.db, specs...)
}

type TowerRepositoryImpl struct {
	db *gorm.DB
}

func NewTowerRepository(db *gorm.DB) contract.TowerRepository {
	return &TowerRepositoryImpl{db: db}
}

func (r *TowerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Tower, error) {
	return findOne[entity.Tower](ctx, r.db, specs...)
}

func (r *TowerRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Tower, error) {
	return findAll[entity.Tower](ctx, r.db, specs...)
}

type BinRepositoryImpl struct {
	db *gorm.DB
}

func NewBinRepository(db *gorm.DB) contract.BinRepository {
	return &BinRepositoryImpl{db: db}
}

func (r *BinRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bin, error) {
	return findOne[entity.Bin](ctx, r.db, specs...)
}

func (r *BinRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bin, error) {
	return findAll[entity.Bin](ctx, r.db, specs...)
}

type SnapshotMetaRepositoryImpl struct {
	db *gorm.DB
}

func NewSnapshotMetaRepository(db *gorm.DB) contract.SnapshotMetaRepository {
	return &SnapshotMetaRepositoryImpl{db: db}
}

func (r *SnapshotMetaRepositoryImpl) LatestVersion(ctx context.Context) (string, error) {
	var meta entity.SnapshotMeta
	err := r.db.WithContext(ctx).Order("synced_at DESC").First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Version, nil
}
