package registry

import (
	"context"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// ListCriteria narrows a driver listing. Query matches name and license
// number, case insensitive.
type ListCriteria struct {
	Query  string
	Status string
	Limit  int
	Offset int
}

type Drivers interface {
	repository.Repository[*Driver]

	Get(ctx context.Context, id uuid.UUID) (*Driver, error)
	GetTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Driver, error)
	Create(ctx context.Context, record *Driver, criteria ...repository.InsertCriteria) (*Driver, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Driver, criteria ...repository.InsertCriteria) (*Driver, error)
	Update(ctx context.Context, record *Driver, criteria ...repository.UpdateCriteria) (*Driver, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *Driver, criteria ...repository.UpdateCriteria) (*Driver, error)
	Search(ctx context.Context, criteria ListCriteria) ([]*Driver, int, error)
	SearchTx(ctx context.Context, tx bun.IDB, criteria ListCriteria) ([]*Driver, int, error)
	Remove(ctx context.Context, id uuid.UUID) error
	RemoveTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type drivers struct {
	repository.Repository[*Driver]
	db *bun.DB
}

var (
	_ Drivers                        = (*drivers)(nil)
	_ repository.Repository[*Driver] = (*drivers)(nil)
)

func NewDriversRepository(db *bun.DB) Drivers {
	repo := repository.NewRepository[*Driver](db, repository.ModelHandlers[*Driver]{
		NewRecord: func() *Driver { return &Driver{} },
		GetID: func(d *Driver) uuid.UUID {
			if d == nil {
				return uuid.Nil
			}
			return d.ID
		},
		SetID: func(d *Driver, id uuid.UUID) {
			if d != nil {
				d.ID = id
			}
		},
	})

	return &drivers{
		Repository: repo,
		db:         db,
	}
}

func (d *drivers) Get(ctx context.Context, id uuid.UUID) (*Driver, error) {
	return d.GetTx(ctx, d.db, id)
}

func (d *drivers) GetTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Driver, error) {
	record := &Driver{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (d *drivers) Create(ctx context.Context, record *Driver, criteria ...repository.InsertCriteria) (*Driver, error) {
	return d.CreateTx(ctx, d.db, record, criteria...)
}

func (d *drivers) CreateTx(ctx context.Context, tx bun.IDB, record *Driver, criteria ...repository.InsertCriteria) (*Driver, error) {
	prepareDriverDefaults(record)
	return d.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (d *drivers) Update(ctx context.Context, record *Driver, criteria ...repository.UpdateCriteria) (*Driver, error) {
	return d.UpdateTx(ctx, d.db, record, criteria...)
}

func (d *drivers) UpdateTx(ctx context.Context, tx bun.IDB, record *Driver, criteria ...repository.UpdateCriteria) (*Driver, error) {
	touchDriver(record)

	if len(criteria) == 0 && record != nil && record.ID != uuid.Nil {
		criteria = append(criteria, repository.UpdateByID(record.ID.String()))
	}

	return d.Repository.UpdateTx(ctx, tx, record, criteria...)
}

func (d *drivers) Search(ctx context.Context, criteria ListCriteria) ([]*Driver, int, error) {
	return d.SearchTx(ctx, d.db, criteria)
}

func (d *drivers) SearchTx(ctx context.Context, tx bun.IDB, criteria ListCriteria) ([]*Driver, int, error) {
	records := make([]*Driver, 0)

	q := tx.NewSelect().Model(&records)

	if term := strings.TrimSpace(criteria.Query); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				WhereOr("LOWER(?TableAlias.first_name) LIKE ?", pattern).
				WhereOr("LOWER(?TableAlias.last_name) LIKE ?", pattern).
				WhereOr("LOWER(?TableAlias.license_no) LIKE ?", pattern)
		})
	}

	if criteria.Status != "" {
		q = q.Where("?TableAlias.status = ?", criteria.Status)
	}

	limit := criteria.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	q = q.
		Order("last_name ASC").
		Order("first_name ASC").
		Limit(limit)

	if criteria.Offset > 0 {
		q = q.Offset(criteria.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (d *drivers) Remove(ctx context.Context, id uuid.UUID) error {
	return d.RemoveTx(ctx, d.db, id)
}

// RemoveTx soft deletes a driver. The model's deleted_at column makes
// bun rewrite the delete as an update.
func (d *drivers) RemoveTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*Driver)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareDriverDefaults(record *Driver) {
	if record == nil {
		return
	}

	if record.Status == "" {
		record.Status = StatusActive
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func touchDriver(record *Driver) {
	if record == nil {
		return
	}
	now := time.Now()
	record.UpdatedAt = &now
}
