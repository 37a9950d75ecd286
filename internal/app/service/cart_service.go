package service

import (
	"errors"
	"strings"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 99
)

var (
	ErrItemNotAvailable = errors.New("item is not available")
	ErrInvalidSize      = errors.New("invalid size for item")
	ErrInvalidQuantity  = errors.New("quantity out of range")
	ErrLineNotFound     = errors.New("order line not found")
	ErrOrderNotEditable = errors.New("order is no longer editable")
)

// AddItemInput carries one cart addition. Empty personalization
// strings mean the field is absent.
type AddItemInput struct {
	ItemID       uint   `json:"item_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
	Size         string `json:"size"`
	PlayerName   string `json:"player_name"`
	PlayerNumber string `json:"player_number"`
}

type CartService interface {
	// GetCart returns the user's EDITABLE order, creating an empty one
	// when none exists.
	GetCart(userID uint) (*model.Order, error)
	AddItem(userID uint, input AddItemInput) (*model.Order, error)

	// UpdateLineQuantity changes a line's quantity and, when size is
	// non-nil, its size as well.
	UpdateLineQuantity(userID, lineID uint, quantity int, size *string) (*model.Order, error)
	RemoveLine(userID, lineID uint) (*model.Order, error)
	SetNote(userID uint, note string) (*model.Order, error)
}

type cartService struct {
	orderRepo  repository.OrderRepository
	itemRepo   repository.ItemRepository
	playerRepo repository.PlayerRepository
}

func NewCartService(
	orderRepo repository.OrderRepository,
	itemRepo repository.ItemRepository,
	playerRepo repository.PlayerRepository,
) CartService {
	return &cartService{
		orderRepo:  orderRepo,
		itemRepo:   itemRepo,
		playerRepo: playerRepo,
	}
}

func (s *cartService) GetCart(userID uint) (*model.Order, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	order, err := s.orderRepo.FindEditableByUserID(userID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	order = &model.Order{
		UserID: userID,
		Status: model.OrderStatusEditable,
	}
	if err := s.orderRepo.Create(order); err != nil {
		// A concurrent request may have created the cart first; the
		// partial unique index on (user_id, EDITABLE) rejects ours.
		if existing, findErr := s.orderRepo.FindEditableByUserID(userID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	logger.Info("Created cart for user", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})
	return s.orderRepo.FindByID(order.ID)
}

func (s *cartService) AddItem(userID uint, input AddItemInput) (*model.Order, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":  userID,
		"item_id":  input.ItemID,
		"quantity": input.Quantity,
		"size":     input.Size,
	})

	if input.Quantity < MinLineQuantity || input.Quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	item, err := s.itemRepo.FindByID(input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !item.Active {
		logger.Warn("Cannot add inactive item to cart", map[string]interface{}{
			"user_id": userID,
			"item_id": item.ID,
		})
		return nil, ErrItemNotAvailable
	}

	size := strings.TrimSpace(input.Size)
	if !item.ValidSize(size) {
		return nil, ErrInvalidSize
	}

	playerName := strings.TrimSpace(input.PlayerName)
	playerNumber := strings.TrimSpace(input.PlayerNumber)
	if playerName == "" && playerNumber == "" {
		playerName, playerNumber = s.defaultPersonalization(userID)
	}

	order, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range order.OrderItems {
		line := &order.OrderItems[i]
		if !line.SameLine(item.ID, size, playerName, playerNumber) {
			continue
		}

		quantity := line.Quantity + input.Quantity
		if quantity > MaxLineQuantity {
			quantity = MaxLineQuantity
		}
		line.Quantity = quantity
		line.LineTotalCents = int64(quantity) * item.PriceCents
		if err := s.orderRepo.UpdateLine(line); err != nil {
			return nil, err
		}
		merged = true
		break
	}

	if !merged {
		line := &model.OrderItem{
			OrderID:        order.ID,
			ItemID:         item.ID,
			Quantity:       input.Quantity,
			Size:           size,
			PlayerName:     playerName,
			PlayerNumber:   playerNumber,
			LineTotalCents: int64(input.Quantity) * item.PriceCents,
		}
		if err := s.orderRepo.CreateLine(line); err != nil {
			return nil, err
		}
	}

	// The total is always recomputed from the lines as the final step
	// of every cart mutation.
	if err := s.orderRepo.RecalculateTotal(order.ID); err != nil {
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"item_id":  item.ID,
		"merged":   merged,
	})
	return s.orderRepo.FindByID(order.ID)
}

func (s *cartService) UpdateLineQuantity(userID, lineID uint, quantity int, size *string) (*model.Order, error) {
	logger.Info("Updating cart line", map[string]interface{}{
		"user_id":  userID,
		"line_id":  lineID,
		"quantity": quantity,
	})

	if quantity < MinLineQuantity || quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	line, order, err := s.editableLine(userID, lineID)
	if err != nil {
		return nil, err
	}

	if size != nil {
		newSize := strings.TrimSpace(*size)
		if !line.Item.ValidSize(newSize) {
			return nil, ErrInvalidSize
		}
		line.Size = newSize
	}

	line.Quantity = quantity
	line.LineTotalCents = int64(quantity) * line.Item.PriceCents
	if err := s.orderRepo.UpdateLine(line); err != nil {
		return nil, err
	}

	if err := s.orderRepo.RecalculateTotal(order.ID); err != nil {
		return nil, err
	}
	return s.orderRepo.FindByID(order.ID)
}

func (s *cartService) RemoveLine(userID, lineID uint) (*model.Order, error) {
	logger.Info("Removing cart line", map[string]interface{}{
		"user_id": userID,
		"line_id": lineID,
	})

	_, order, err := s.editableLine(userID, lineID)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.DeleteLine(lineID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.RecalculateTotal(order.ID); err != nil {
		return nil, err
	}
	return s.orderRepo.FindByID(order.ID)
}

func (s *cartService) SetNote(userID uint, note string) (*model.Order, error) {
	order, err := s.GetCart(userID)
	if err != nil {
		return nil, err
	}

	order.Note = strings.TrimSpace(note)
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return s.orderRepo.FindByID(order.ID)
}

// editableLine loads a line and checks that it belongs to an EDITABLE
// order owned by the user. Lines of other users are reported as not
// found rather than forbidden.
func (s *cartService) editableLine(userID, lineID uint) (*model.OrderItem, *model.Order, error) {
	line, err := s.orderRepo.FindLineByID(lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLineNotFound
		}
		return nil, nil, err
	}

	order, err := s.orderRepo.FindByID(line.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLineNotFound
		}
		return nil, nil, err
	}
	if order.UserID != userID {
		logger.Warn("Cart line belongs to another user", map[string]interface{}{
			"user_id": userID,
			"line_id": lineID,
		})
		return nil, nil, ErrLineNotFound
	}
	if !order.Status.Editable() {
		return nil, nil, ErrOrderNotEditable
	}
	return line, order, nil
}

// defaultPersonalization fills in the player fields when the user has
// exactly one linked player. Lookup failures fall back to no
// personalization.
func (s *cartService) defaultPersonalization(userID uint) (string, string) {
	players, err := s.playerRepo.FindByUserID(userID)
	if err != nil || len(players) != 1 {
		return "", ""
	}

	logger.Debug("Applying linked player personalization", map[string]interface{}{
		"user_id":   userID,
		"player_id": players[0].ID,
	})
	return players[0].FullName(), players[0].JerseyNumberString()
}
