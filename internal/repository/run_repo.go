package repository

import (
	"context"
	"errors"

	"github.com/lagabyok/SabIA-agent/internal/model"

	"gorm.io/gorm"
)

// ErrRunNotFound is returned when no run matches the requested id, or when
// no run exists yet at all.
var ErrRunNotFound = errors.New("run no encontrado")

// RunRepository defines the data access contract for run history.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type RunRepository interface {
	Save(ctx context.Context, run *model.Run) error
	FindLatest(ctx context.Context) (*model.Run, error)
	List(ctx context.Context, limit int) ([]model.Run, error)
	FindByID(ctx context.Context, runID string) (*model.Run, error)
}

type runRepo struct{ db *gorm.DB }

func NewRunRepository(db *gorm.DB) RunRepository { return &runRepo{db: db} }

func (r *runRepo) Save(ctx context.Context, run *model.Run) error {
	// Upsert keyed by run_id — re-saving the same run id replaces the record,
	// matching append-only history with last-write-wins by creation time.
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *runRepo) FindLatest(ctx context.Context) (*model.Run, error) {
	var run model.Run
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	return &run, err
}

func (r *runRepo) List(ctx context.Context, limit int) ([]model.Run, error) {
	var runs []model.Run
	err := r.db.WithContext(ctx).
		Select("run_id", "periodo", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

func (r *runRepo) FindByID(ctx context.Context, runID string) (*model.Run, error) {
	var run model.Run
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	return &run, err
}
