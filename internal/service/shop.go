package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/local_market/internal/models"
	"github.com/Skotchmaster/local_market/internal/repo"
	"github.com/Skotchmaster/local_market/pkg/logging"
)

type ShopService struct {
	Repo *repo.GormRepo
}

type ShopInput struct {
	Name        string
	Description string
	Address     models.Address
	Phone       string
	Category    string
	OpeningTime string
	ClosingTime string
	Image       string
}

// ShopPatch carries only the fields present in the request.
type ShopPatch struct {
	Name        *string
	Description *string
	Address     *models.Address
	Phone       *string
	Category    *string
	OpeningTime *string
	ClosingTime *string
	Image       *string
}

func (s *ShopService) List(ctx context.Context, city, category string) ([]models.Shop, error) {
	return s.Repo.ListShops(ctx, repo.ShopFilter{City: city, Category: category})
}

func (s *ShopService) Mine(ctx context.Context, caller Caller) ([]models.Shop, error) {
	return s.Repo.ListShops(ctx, repo.ShopFilter{OwnerID: caller.ID})
}

func (s *ShopService) Get(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	shop, err := s.Repo.GetShop(ctx, id)
	if err != nil {
		return nil, notFound(err, "shop not found")
	}
	return shop, nil
}

func (s *ShopService) Create(ctx context.Context, caller Caller, in ShopInput) (*models.Shop, error) {
	shop := &models.Shop{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Address:     in.Address,
		Phone:       in.Phone,
		Category:    in.Category,
		OpeningTime: in.OpeningTime,
		ClosingTime: in.ClosingTime,
		Image:       in.Image,
		OwnerID:     caller.ID,
	}
	if err := validateShop(shop); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateShop(ctx, shop); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Infow("shop_created", "shop_id", shop.ID, "owner_id", caller.ID)
	return shop, nil
}

func (s *ShopService) Update(ctx context.Context, caller Caller, id uuid.UUID, p ShopPatch) (*models.Shop, error) {
	shop, err := s.Repo.GetShop(ctx, id)
	if err != nil {
		return nil, notFound(err, "shop not found")
	}
	if shop.OwnerID != caller.ID {
		return nil, fmt.Errorf("%w: not authorized to update this shop", ErrForbidden)
	}

	setIf(&shop.Name, p.Name)
	setIf(&shop.Description, p.Description)
	setIf(&shop.Phone, p.Phone)
	setIf(&shop.Category, p.Category)
	setIf(&shop.OpeningTime, p.OpeningTime)
	setIf(&shop.ClosingTime, p.ClosingTime)
	setIf(&shop.Image, p.Image)
	if p.Address != nil {
		shop.Address = *p.Address
	}
	shop.Name = strings.TrimSpace(shop.Name)

	if err := validateShop(shop); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveShop(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func validateShop(s *models.Shop) error {
	required := []struct {
		name, value string
	}{
		{"name", s.Name},
		{"description", s.Description},
		{"address.street", s.Address.Street},
		{"address.city", s.Address.City},
		{"address.state", s.Address.State},
		{"address.zip", s.Address.Zip},
		{"phone", s.Phone},
		{"category", s.Category},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
	}

	open, err := time.Parse("15:04", s.OpeningTime)
	if err != nil {
		return fmt.Errorf("%w: openingTime must be HH:MM", ErrValidation)
	}
	closing, err := time.Parse("15:04", s.ClosingTime)
	if err != nil {
		return fmt.Errorf("%w: closingTime must be HH:MM", ErrValidation)
	}
	if open.Equal(closing) {
		return fmt.Errorf("%w: openingTime and closingTime must differ", ErrValidation)
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
