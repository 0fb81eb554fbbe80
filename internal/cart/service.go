package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart reads and mutations for the storefront.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartView, error)
}

// CartItemView is one cart line with its product snapshot.
type CartItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartView is the cart as returned to the storefront.
type CartView struct {
	Items    []CartItemView  `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type service struct {
	repo     Repository
	products productLoader
}

// NewService builds the cart service.
func NewService(repo Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartView{Items: []CartItemView{}, Subtotal: decimal.Zero}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return buildView(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available")
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	if err := s.repo.UpsertItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart item")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	rows, err := s.repo.SetItemQuantity(ctx, cart.ID, productID, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	rows, err := s.repo.RemoveItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	return s.GetCart(ctx, userID)
}

func buildView(cart *models.Cart) *CartView {
	view := &CartView{Items: make([]CartItemView, 0, len(cart.Items)), Subtotal: decimal.Zero}
	for _, item := range cart.Items {
		line := CartItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.Name = item.Product.Name
			line.Thumbnail = item.Product.Thumbnail
			line.Price = item.Product.Price
			line.Stock = item.Product.Stock
			line.LineTotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
		view.Items = append(view.Items, line)
	}
	view.Subtotal = view.Subtotal.Round(2)
	return view
}
