package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/agora/core/category"
)

type categoryRepository struct {
	db *DB
}

var _ category.Repository = (*categoryRepository)(nil) // interface compliance check

func NewCategoryRepository(db *DB) category.Repository {
	return &categoryRepository{db: db}
}

func (repo *categoryRepository) CheckNameUniqueness(_ context.Context, name string, excludedCategories ...category.Category) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := func(cat *category.Category) bool {
		for _, ex := range excludedCategories {
			if ex.ID == cat.ID {
				return true
			}
		}
		return false
	}

	for _, cat := range repo.db.categories {
		if cat.Name == name && !excluded(cat) {
			return category.ErrNameExists
		}
	}
	return nil
}

func (repo *categoryRepository) CreateCategory(_ context.Context, cat category.Category) (category.Category, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cat.ID = uuid.New().String()
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

func (repo *categoryRepository) QueryAllCategories(_ context.Context) ([]category.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cats := make([]category.Category, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].CreatedAt.After(cats[j].CreatedAt) })
	return cats, nil
}

func (repo *categoryRepository) GetCategory(_ context.Context, id string) (category.Category, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cat, ok := repo.db.categories[id]; ok {
		return *cat, nil
	}
	return category.Category{}, category.ErrNotFound
}

func (repo *categoryRepository) DeleteCategoriesByID(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.categories[id]; !ok {
			continue
		}
		delete(repo.db.categories, id)
		cnt++

		// SET NULL: activities survive their category
		for _, act := range repo.db.activities {
			if act.CategoryID == id {
				act.CategoryID = ""
			}
		}
	}
	return cnt, nil
}
