package category

import (
	"context"
	"time"

	"github.com/trezcool/agora/core"
)

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func (nc *NewCategory) Validate(ctx context.Context, svc Service) error {
	nc.Name = core.CleanString(nc.Name)

	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nc.Name)
}
