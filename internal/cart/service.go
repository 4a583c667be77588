package cart

import (
	"context"
	"fmt"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

// AddItemInput is one add-to-cart request.
type AddItemInput struct {
	ProductID string
	Name      string
	Price     money.Money
	Quantity  int
	Image     string
}

// Service applies one mutation per call and persists the cart afterwards.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, cartID string) (*Cart, error) {
	c, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil {
		return nil, ErrCartNotFound.Withf("cart %s not found", cartID)
	}
	return c, nil
}

// AddItem creates the cart on first use.
func (s *Service) AddItem(ctx context.Context, cartID, ownerID string, in AddItemInput) (*Cart, error) {
	c, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil {
		c = New(cartID, ownerID)
	}
	if err := c.AddItem(in.ProductID, in.Name, in.Price, in.Quantity, in.Image); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

func (s *Service) UpdateItemQuantity(ctx context.Context, cartID, productID string, quantity int) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		return c.UpdateItemQuantity(productID, quantity)
	})
}

func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		return c.RemoveItem(productID)
	})
}

func (s *Service) ApplyDiscount(ctx context.Context, cartID string, discount money.Money) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		return c.ApplyDiscount(discount)
	})
}

func (s *Service) RemoveDiscount(ctx context.Context, cartID string) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		c.RemoveDiscount()
		return nil
	})
}

func (s *Service) ApplyTax(ctx context.Context, cartID string, tax money.Money) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		c.ApplyTax(tax)
		return nil
	})
}

func (s *Service) RemoveTax(ctx context.Context, cartID string) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		c.RemoveTax()
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, cartID string) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		c.Clear()
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, cartID string) error {
	exists, err := s.repo.Exists(ctx, cartID)
	if err != nil {
		return fmt.Errorf("check cart: %w", err)
	}
	if !exists {
		return ErrCartNotFound.Withf("cart %s not found", cartID)
	}
	if err := s.repo.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, cartID string, fn func(*Cart) error) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}
