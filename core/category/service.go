package category

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/agora/core"
)

var (
	// errors
	ErrNotFound   = errors.New("category not found")
	ErrNameExists = errors.New("a category with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedCategories ...Category) error
		CreateCategory(ctx context.Context, cat Category) (Category, error)
		QueryAllCategories(ctx context.Context) ([]Category, error) // ordered by -created_at
		GetCategory(ctx context.Context, id string) (Category, error)
		// DeleteCategoriesByID nulls the category reference of any Activity
		// pointing at a deleted Category; Activities themselves survive.
		DeleteCategoriesByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewCategory) (Category, error)
		QueryAll(ctx context.Context) ([]Category, error)
		GetByID(ctx context.Context, id string) (Category, error)
		CheckUniqueness(ctx context.Context, name string, exclCats ...Category) error
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, name string, exclCats ...Category) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, exclCats...); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nc NewCategory) (Category, error) {
	now := time.Now().UTC()
	cat := Category{
		Name:      nc.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateCategory(ctx, cat)
}

func (svc *service) QueryAll(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryAllCategories(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Category, error) {
	return svc.repo.GetCategory(ctx, id)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteCategoriesByID(ctx, ids...)
	return err
}
