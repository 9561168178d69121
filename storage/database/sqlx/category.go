package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/agora/core/category"
)

type dbCategory struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type categoryRepository struct {
	db *sqlx.DB
}

var _ category.Repository = (*categoryRepository)(nil) // interface compliance check

func NewCategoryRepository(db *sqlx.DB) *categoryRepository {
	return &categoryRepository{db: db}
}

func (repo categoryRepository) unpack(c dbCategory) category.Category {
	return category.Category{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (repo categoryRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return category.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo categoryRepository) CheckNameUniqueness(ctx context.Context, name string, excludedCategories ...category.Category) error {
	q := `SELECT EXISTS (SELECT 1 FROM category WHERE name = ?)`
	args := []interface{}{name}
	if len(excludedCategories) > 0 {
		ids := make([]string, 0, len(excludedCategories))
		for _, c := range excludedCategories {
			ids = append(ids, c.ID)
		}
		var err error
		q = `SELECT EXISTS (SELECT 1 FROM category WHERE name = ? AND id NOT IN (?))`
		q, args, err = sqlx.In(q, name, ids)
		if err != nil {
			return errors.Wrap(err, "expanding query")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking category uniqueness")
	}
	if exists {
		return category.ErrNameExists
	}
	return nil
}

func (repo categoryRepository) CreateCategory(ctx context.Context, cat category.Category) (category.Category, error) {
	cat.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO category (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`,
		cat.ID, cat.Name, cat.CreatedAt.UTC(), cat.UpdatedAt.UTC())
	if err != nil {
		return category.Category{}, errors.Wrap(err, "inserting category")
	}
	return cat, nil
}

func (repo categoryRepository) QueryAllCategories(ctx context.Context) ([]category.Category, error) {
	var rows []dbCategory
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM category ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	cats := make([]category.Category, 0, len(rows))
	for _, c := range rows {
		cats = append(cats, repo.unpack(c))
	}
	return cats, nil
}

func (repo categoryRepository) GetCategory(ctx context.Context, id string) (category.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return category.Category{}, category.ErrNotFound
	}
	var c dbCategory
	if err := repo.db.GetContext(ctx, &c, `SELECT * FROM category WHERE id = $1`, id); err != nil {
		return category.Category{}, repo.trapNoRowsErr(err, "finding category")
	}
	return repo.unpack(c), nil
}

func (repo categoryRepository) DeleteCategoriesByID(ctx context.Context, ids ...string) (int, error) {
	// activity.category_id is nulled by the FK's ON DELETE SET NULL
	q, args, err := sqlx.In(`DELETE FROM category WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "expanding query")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting categories")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
