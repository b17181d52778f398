package catalog

import (
	"context"
	"fmt"

	"github.com/tanpawarit/chative-wholesale-agent/pkg/errx"
)

// MaxResults bounds search output so replies fit in a chat message.
const MaxResults = 15

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search matches query against name, description, color, category, type and
// size. An empty query lists available products only.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	needle := Normalize(query)

	var (
		products []Product
		err      error
	)
	if needle == "" {
		products, err = s.repo.ListAvailable(ctx, MaxResults)
	} else {
		products, err = s.repo.Search(ctx, needle, MaxResults)
	}
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	if len(products) > MaxResults {
		products = products[:MaxResults]
	}
	return products, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	if id <= 0 {
		return nil, errx.NotFound("product %d not found", id)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}
