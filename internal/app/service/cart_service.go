package service

import (
	"errors"

	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")
)

// CartSummary is a durable cart with its running totals, priced against
// the current catalog. Order creation freezes prices separately; this view
// is display-only.
type CartSummary struct {
	Items    []model.CartItem `json:"items"`
	Totals   Totals           `json:"totals"`
	Warnings []ClampWarning   `json:"warnings,omitempty"`
}

type CartService interface {
	GetUserCart(userID uint) (*CartSummary, error)
	// AddItem validates the selection against catalog and stock, then
	// merges it into the user's cart (find-or-append with summed,
	// capped quantity). The cart is unchanged on any validation error.
	AddItem(userID, productID uint, size, color string, quantity int) (*model.CartItem, error)
	// UpdateQuantity sets a line's quantity after re-validating the full
	// new quantity against stock. A non-positive quantity removes the
	// line.
	UpdateQuantity(userID, cartItemID uint, quantity int) error
	RemoveItem(userID, cartItemID uint) error
	// Clear empties the cart. Clearing an already-empty cart is a no-op.
	Clear(userID uint) error
	// MergeGuestCart folds a cookie cart into the user's durable cart on
	// login. Matching identities sum and clamp; lines failing validation
	// are skipped with a warning instead of aborting the merge. The
	// caller clears the cookie afterwards so the same snapshot is never
	// applied twice.
	MergeGuestCart(userID uint, guestLines []MergeLine) (*CartSummary, error)
	// PriceGuestCart validates and prices a cookie cart without
	// persisting anything, for the unauthenticated cart view.
	PriceGuestCart(lines []MergeLine) (*BatchValidation, Totals, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	pricing     PricingService
	stock       StockService
	policy      TotalsPolicy
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	pricing PricingService,
	stock StockService,
	policy TotalsPolicy,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		variantRepo: variantRepo,
		pricing:     pricing,
		stock:       stock,
		policy:      policy,
	}
}

func (s *cartService) GetUserCart(userID uint) (*CartSummary, error) {
	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return s.summarize(items)
}

func (s *cartService) summarize(items []model.CartItem) (*CartSummary, error) {
	lines := make([]PricedLine, 0, len(items))
	for i := range items {
		price, err := s.pricing.ResolvePrice(items[i].ProductID, items[i].Size, items[i].Color)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrVariantNotFound) {
				// Catalog changed underneath the cart; show the line
				// unpriced rather than hiding the whole cart.
				logger.Warn("Cart line no longer priceable", map[string]interface{}{
					"product_id": items[i].ProductID,
					"size":       items[i].Size,
					"color":      items[i].Color,
				})
				continue
			}
			return nil, err
		}
		lines = append(lines, PricedLine{UnitPrice: price.UnitPrice, Quantity: items[i].Quantity})
	}

	return &CartSummary{
		Items:  items,
		Totals: s.policy.ComputeTotals(lines),
	}, nil
}

func (s *cartService) AddItem(userID, productID uint, size, color string, quantity int) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"size":       size,
		"color":      color,
		"quantity":   quantity,
	})

	existing, err := s.cartRepo.FindByIdentity(userID, productID, size, color)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Validate the full quantity the line would end up holding, so the
	// insufficient-stock error reports against the real request.
	targetQty := quantity
	if existing != nil {
		targetQty, _ = MergeQuantity(existing.Quantity, quantity, model.MaxQuantityPerLine)
	} else if targetQty > model.MaxQuantityPerLine {
		targetQty = model.MaxQuantityPerLine
	}

	validation, err := s.stock.Validate(MergeLine{
		ProductID: productID,
		Size:      size,
		Color:     color,
		Quantity:  targetQty,
	})
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		logger.Warn("Add to cart rejected by stock validation", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"size":       size,
			"color":      color,
		})
		return nil, validation.Err
	}

	if existing != nil {
		existing.Quantity = targetQty
		existing.AvailableStock = validation.AvailableStock
		if err := s.cartRepo.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	item := &model.CartItem{
		UserID:         userID,
		ProductID:      productID,
		Size:           size,
		Color:          color,
		Quantity:       targetQty,
		AvailableStock: validation.AvailableStock,
	}
	if err := s.cartRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) UpdateQuantity(userID, cartItemID uint, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(userID, cartItemID)
	}

	item, err := s.findOwnedItem(userID, cartItemID)
	if err != nil {
		return err
	}

	if quantity > model.MaxQuantityPerLine {
		quantity = model.MaxQuantityPerLine
	}

	validation, err := s.stock.Validate(MergeLine{
		ProductID: item.ProductID,
		Size:      item.Size,
		Color:     item.Color,
		Quantity:  quantity,
	})
	if err != nil {
		return err
	}
	if !validation.Valid {
		return validation.Err
	}

	item.Quantity = quantity
	item.AvailableStock = validation.AvailableStock
	return s.cartRepo.Update(item)
}

func (s *cartService) RemoveItem(userID, cartItemID uint) error {
	item, err := s.findOwnedItem(userID, cartItemID)
	if err != nil {
		return err
	}
	return s.cartRepo.Delete(item.ID)
}

func (s *cartService) Clear(userID uint) error {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})
	return s.cartRepo.DeleteByUserID(userID)
}

func (s *cartService) MergeGuestCart(userID uint, guestLines []MergeLine) (*CartSummary, error) {
	logger.Info("Merging guest cart into user cart", map[string]interface{}{
		"user_id":     userID,
		"guest_lines": len(guestLines),
	})

	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	base := make([]MergeLine, 0, len(items))
	for _, item := range items {
		base = append(base, MergeLine{
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
		})
	}

	merged := MergeLines(base, guestLines, model.MaxQuantityPerLine)

	for _, line := range merged.Lines {
		validation, err := s.stock.Validate(line)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			if stockErr, ok := validation.Err.(*InsufficientStockError); ok && stockErr.Available > 0 {
				// Keep what stock allows instead of dropping the line.
				line.Quantity = stockErr.Available
			} else {
				logger.Warn("Dropping unmergeable guest cart line", map[string]interface{}{
					"user_id":    userID,
					"product_id": line.ProductID,
					"size":       line.Size,
					"color":      line.Color,
				})
				continue
			}
		}

		existing, err := s.cartRepo.FindByIdentity(userID, line.ProductID, line.Size, line.Color)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			item := &model.CartItem{
				UserID:         userID,
				ProductID:      line.ProductID,
				Size:           line.Size,
				Color:          line.Color,
				Quantity:       line.Quantity,
				AvailableStock: validation.AvailableStock,
			}
			if err := s.cartRepo.Create(item); err != nil {
				return nil, err
			}
			continue
		}

		if existing.Quantity != line.Quantity || existing.AvailableStock != validation.AvailableStock {
			existing.Quantity = line.Quantity
			existing.AvailableStock = validation.AvailableStock
			if err := s.cartRepo.Update(existing); err != nil {
				return nil, err
			}
		}
	}

	summary, err := s.GetUserCart(userID)
	if err != nil {
		return nil, err
	}
	summary.Warnings = merged.Warnings
	return summary, nil
}

func (s *cartService) PriceGuestCart(lines []MergeLine) (*BatchValidation, Totals, error) {
	batch, err := s.stock.ValidateAll(lines)
	if err != nil {
		return nil, Totals{}, err
	}

	priced := make([]PricedLine, 0, len(lines))
	for _, validation := range batch.Lines {
		if !validation.Valid {
			continue
		}
		price, err := s.pricing.ResolvePrice(validation.Line.ProductID, validation.Line.Size, validation.Line.Color)
		if err != nil {
			return nil, Totals{}, err
		}
		priced = append(priced, PricedLine{UnitPrice: price.UnitPrice, Quantity: validation.Line.Quantity})
	}

	return batch, s.policy.ComputeTotals(priced), nil
}

func (s *cartService) findOwnedItem(userID, cartItemID uint) (*model.CartItem, error) {
	item, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}
