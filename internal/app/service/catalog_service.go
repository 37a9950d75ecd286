package service

import (
	"errors"
	"strings"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrItemNotFound         = errors.New("item not found")
	ErrItemInUse            = errors.New("item is referenced by existing orders")
	ErrInvalidItemInput     = errors.New("invalid item input")
	ErrInvalidPosition      = errors.New("invalid display position")
	ErrDisplayOrderConflict = errors.New("display order changed concurrently")
)

// ItemInput carries the writable item fields for create and update.
type ItemInput struct {
	Name       string   `json:"name" binding:"required"`
	PriceCents int64    `json:"price_cents"`
	Active     *bool    `json:"active"`
	Sizes      []string `json:"sizes"`
	Link       string   `json:"link"`
	ImageKey   string   `json:"image_key"`
	ImageURL   string   `json:"image_url"`
}

type CatalogService interface {
	ListItems(includeInactive bool) ([]model.Item, error)
	GetItem(id uint) (*model.Item, error)
	CreateItem(input ItemInput) (*model.Item, error)
	UpdateItem(id uint, input ItemInput) (*model.Item, error)
	DeleteItem(id uint) error

	// SwapDisplayOrder exchanges the positions of two items. The
	// expected positions guard against concurrent reordering.
	SwapDisplayOrder(aID uint, aPos int, bID uint, bPos int) error

	// MoveItemToPosition moves an item to the given position and
	// shifts the items in between, keeping positions dense.
	MoveItemToPosition(itemID uint, position int) error
}

type catalogService struct {
	itemRepo repository.ItemRepository
}

func NewCatalogService(itemRepo repository.ItemRepository) CatalogService {
	return &catalogService{itemRepo: itemRepo}
}

func (s *catalogService) ListItems(includeInactive bool) ([]model.Item, error) {
	logger.Debug("Fetching catalog items", map[string]interface{}{
		"include_inactive": includeInactive,
	})
	return s.itemRepo.FindAll(!includeInactive)
}

func (s *catalogService) GetItem(id uint) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *catalogService) CreateItem(input ItemInput) (*model.Item, error) {
	logger.Info("Creating catalog item", map[string]interface{}{
		"name":        input.Name,
		"price_cents": input.PriceCents,
	})

	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	maxOrder, err := s.itemRepo.MaxDisplayOrder()
	if err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	item := &model.Item{
		Name:         strings.TrimSpace(input.Name),
		PriceCents:   input.PriceCents,
		Active:       active,
		Sizes:        model.StringList(input.Sizes),
		Link:         input.Link,
		ImageKey:     input.ImageKey,
		ImageURL:     input.ImageURL,
		DisplayOrder: maxOrder + 1,
	}
	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}

	logger.Info("Catalog item created", map[string]interface{}{
		"item_id":       item.ID,
		"display_order": item.DisplayOrder,
	})
	return item, nil
}

func (s *catalogService) UpdateItem(id uint, input ItemInput) (*model.Item, error) {
	logger.Info("Updating catalog item", map[string]interface{}{
		"item_id": id,
	})

	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	item, err := s.GetItem(id)
	if err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(input.Name)
	item.PriceCents = input.PriceCents
	if input.Active != nil {
		item.Active = *input.Active
	}
	item.Sizes = model.StringList(input.Sizes)
	item.Link = input.Link
	if input.ImageKey != "" {
		item.ImageKey = input.ImageKey
	}
	if input.ImageURL != "" {
		item.ImageURL = input.ImageURL
	}

	if err := s.itemRepo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *catalogService) DeleteItem(id uint) error {
	logger.Info("Deleting catalog item", map[string]interface{}{
		"item_id": id,
	})

	item, err := s.GetItem(id)
	if err != nil {
		return err
	}

	// Items referenced by any order line cannot be removed; deactivate
	// them instead.
	count, err := s.itemRepo.CountOrderLines(id)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Warn("Cannot delete item referenced by orders", map[string]interface{}{
			"item_id":     id,
			"order_lines": count,
		})
		return ErrItemInUse
	}

	return s.itemRepo.Delete(id, item.DisplayOrder)
}

func (s *catalogService) SwapDisplayOrder(aID uint, aPos int, bID uint, bPos int) error {
	logger.Info("Swapping item display order", map[string]interface{}{
		"a_id":  aID,
		"a_pos": aPos,
		"b_id":  bID,
		"b_pos": bPos,
	})

	if aID == bID {
		return ErrInvalidPosition
	}
	if _, err := s.GetItem(aID); err != nil {
		return err
	}
	if _, err := s.GetItem(bID); err != nil {
		return err
	}

	swapped, err := s.itemRepo.SwapDisplayOrders(aID, aPos, bID, bPos)
	if err != nil {
		return err
	}
	if !swapped {
		logger.Warn("Display order swap rejected, positions changed", map[string]interface{}{
			"a_id": aID,
			"b_id": bID,
		})
		return ErrDisplayOrderConflict
	}
	return nil
}

func (s *catalogService) MoveItemToPosition(itemID uint, position int) error {
	logger.Info("Moving item to display position", map[string]interface{}{
		"item_id":  itemID,
		"position": position,
	})

	item, err := s.GetItem(itemID)
	if err != nil {
		return err
	}

	maxOrder, err := s.itemRepo.MaxDisplayOrder()
	if err != nil {
		return err
	}
	if position < 1 || position > maxOrder {
		return ErrInvalidPosition
	}
	if position == item.DisplayOrder {
		return nil
	}

	moved, err := s.itemRepo.MoveDisplayOrder(itemID, item.DisplayOrder, position)
	if err != nil {
		return err
	}
	if !moved {
		return ErrDisplayOrderConflict
	}
	return nil
}

func validateItemInput(input ItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrInvalidItemInput
	}
	if input.PriceCents < 0 {
		return ErrInvalidItemInput
	}
	for _, size := range input.Sizes {
		if strings.TrimSpace(size) == "" {
			return ErrInvalidItemInput
		}
	}
	return nil
}
