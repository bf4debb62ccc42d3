package bazaar

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
	"github.com/skyon-community/skyon-backend/internal/upload"
	"github.com/skyon-community/skyon-backend/internal/validation"
)

const fieldProducts = "products"

type Service struct {
	*crud.Service[*Store]
}

func NewService(deps crud.Deps) *Service {
	return &Service{crud.NewService[*Store](deps, registry.Stores, crud.Options{
		ImageField: "coverImageUrl",
		Validate:   validateStore,
		Defaults:   map[string]any{"rating": 0, fieldProducts: []any{}},
		ReadOnly:   []string{"rating", fieldProducts},
	})}
}

// ByCategory keeps stores of one category; "" and "All" keep everything.
func ByCategory(category string) (func(docstore.Record, *Store) bool, error) {
	if category == "" || category == "All" {
		return nil, nil
	}
	for _, c := range Categories {
		if c == category {
			return func(_ docstore.Record, s *Store) bool { return s.Category == category }, nil
		}
	}
	return nil, apperr.Invalid("category", "must be one of All, "+strings.Join(Categories, ", "))
}

// AddProduct appends a product to the store. The whole product list is rewritten, so a
// concurrent add by another session of the owner can be lost.
func (s *Service) AddProduct(ctx context.Context, storeID string, in ProductInput, img *upload.Image) (*Store, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if img == nil && in.ImageURL == "" {
		return nil, apperr.Invalid("image", "a product photo is required")
	}

	return s.Edit(ctx, storeID, func(current docstore.Record) (map[string]any, error) {
		products, err := productsOf(current)
		if err != nil {
			return nil, err
		}
		if img != nil {
			url, err := s.Upload(ctx, *img)
			if err != nil {
				return nil, err
			}
			in.ImageURL = url
		}
		products = append(products, Product{
			ID:          uuid.NewString(),
			Name:        in.Name,
			Price:       in.Price,
			ImageURL:    in.ImageURL,
			Description: strings.TrimSpace(in.Description),
		})
		return map[string]any{fieldProducts: products}, nil
	}, nil)
}

// RemoveProduct drops one product and rewrites the list.
func (s *Service) RemoveProduct(ctx context.Context, storeID, productID string) (*Store, error) {
	return s.Edit(ctx, storeID, func(current docstore.Record) (map[string]any, error) {
		products, err := productsOf(current)
		if err != nil {
			return nil, err
		}
		kept := make([]Product, 0, len(products))
		for _, p := range products {
			if p.ID != productID {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(products) {
			return nil, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
		}
		return map[string]any{fieldProducts: kept}, nil
	}, nil)
}

func productsOf(rec docstore.Record) ([]Product, error) {
	shape, err := docstore.Decode[struct {
		Products []Product `json:"products"`
	}](rec)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if shape.Products == nil {
		return []Product{}, nil
	}
	return shape.Products, nil
}
