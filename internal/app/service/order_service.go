package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"github.com/wkim/teamshop-backend/pkg/mailer"
	"github.com/wkim/teamshop-backend/pkg/money"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderNotSubmitable = errors.New("order already submitted")
	ErrInvalidStatus      = errors.New("invalid order status")
)

// OrderNotifier receives order lifecycle events. Implementations must
// not block; delivery is best effort.
type OrderNotifier interface {
	NotifyOrderSubmitted(order *model.Order)
}

type OrderService interface {
	// SubmitOrder transitions the user's cart from EDITABLE to
	// SUBMITTED, persisting the note when one is given. The admin
	// notification email and the event feed are best effort; their
	// failure never rolls back the submission.
	SubmitOrder(userID uint, note *string) (*model.Order, error)

	GetOrder(userID uint, isAdmin bool, orderID uint) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)

	ListOrders(status string) ([]model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) error
	BulkUpdateOrderStatus(orderIDs []uint, status model.OrderStatus) (int64, error)
	SetOrderPaid(orderID uint, paid bool) error
	ExportOrders() ([]byte, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	mailer      mailer.Mailer
	notifier    OrderNotifier
	notifyEmail string
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	m mailer.Mailer,
	notifier OrderNotifier,
	notifyEmail string,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		mailer:      m,
		notifier:    notifier,
		notifyEmail: notifyEmail,
	}
}

func (s *orderService) SubmitOrder(userID uint, note *string) (*model.Order, error) {
	logger.Info("Submitting order", map[string]interface{}{
		"user_id": userID,
	})

	if note != nil {
		trimmed := strings.TrimSpace(*note)
		note = &trimmed
	}

	order, err := s.orderRepo.FindEditableByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if len(order.OrderItems) == 0 {
		logger.Warn("Cannot submit empty cart", map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, ErrEmptyCart
	}

	// Totals are derived state; settle them before the status flips.
	if err := s.orderRepo.RecalculateTotal(order.ID); err != nil {
		return nil, err
	}

	submitted, err := s.orderRepo.SubmitIfEditable(order.ID, note)
	if err != nil {
		return nil, err
	}
	if !submitted {
		logger.Warn("Order already submitted", map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, ErrOrderNotSubmitable
	}

	order, err = s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Order submitted successfully", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_cents": order.TotalCents,
		"line_count":  len(order.OrderItems),
	})

	s.notifyAdmins(order)
	if s.notifier != nil {
		s.notifier.NotifyOrderSubmitted(order)
	}
	return order, nil
}

// notifyAdmins emails the order summary to the configured address.
// Failures are logged and swallowed.
func (s *orderService) notifyAdmins(order *model.Order) {
	if s.notifyEmail == "" {
		return
	}

	subject := fmt.Sprintf("New order #%d from %s", order.ID, order.User.Email)
	if err := s.mailer.Send(s.notifyEmail, subject, buildOrderEmail(order)); err != nil {
		logger.Error("Failed to send order notification email", err, map[string]interface{}{
			"order_id": order.ID,
			"to":       s.notifyEmail,
		})
	}
}

func buildOrderEmail(order *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Order #%d</h2>", order.ID)
	fmt.Fprintf(&b, "<p>From: %s (%s)</p>", order.User.Name, order.User.Email)
	b.WriteString(`<table border="1" cellpadding="4" cellspacing="0">`)
	b.WriteString("<tr><th>Item</th><th>Size</th><th>Player</th><th>Qty</th><th>Line Total</th></tr>")
	for _, line := range order.OrderItems {
		player := line.PlayerName
		if line.PlayerNumber != "" {
			player = strings.TrimSpace(player + " #" + line.PlayerNumber)
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>",
			line.Item.Name, line.Size, player, line.Quantity, money.FormatCents(line.LineTotalCents))
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p><strong>Total: %s</strong></p>", money.FormatCents(order.TotalCents))
	if order.Note != "" {
		fmt.Fprintf(&b, "<p>Note: %s</p>", order.Note)
	}
	return b.String()
}

func (s *orderService) GetOrder(userID uint, isAdmin bool, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// Another user's order reads as not found so order IDs are not
	// probeable.
	if !isAdmin && order.UserID != userID {
		logger.Warn("User attempted to access another user's order", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) ListOrders(status string) ([]model.Order, error) {
	if status != "" && !model.OrderStatus(status).IsValid() {
		return nil, ErrInvalidStatus
	}
	return s.orderRepo.FindAll(status)
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) error {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	if !status.IsValid() {
		return ErrInvalidStatus
	}

	affected, err := s.orderRepo.UpdateStatus(orderID, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *orderService) BulkUpdateOrderStatus(orderIDs []uint, status model.OrderStatus) (int64, error) {
	logger.Info("Bulk updating order status", map[string]interface{}{
		"order_ids": orderIDs,
		"status":    status,
	})

	if !status.IsValid() {
		return 0, ErrInvalidStatus
	}
	if len(orderIDs) == 0 {
		return 0, nil
	}
	return s.orderRepo.BulkUpdateStatus(orderIDs, status)
}

func (s *orderService) SetOrderPaid(orderID uint, paid bool) error {
	logger.Info("Updating order paid flag", map[string]interface{}{
		"order_id": orderID,
		"paid":     paid,
	})

	affected, err := s.orderRepo.UpdatePaid(orderID, paid)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *orderService) ExportOrders() ([]byte, error) {
	logger.Info("Exporting orders to spreadsheet")

	orders, err := s.orderRepo.FindAll("")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order ID", "Email", "Status", "Paid", "Item", "Size", "Player", "Number", "Qty", "Line Total", "Order Total", "Note"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, order := range orders {
		// Carts that were never submitted stay out of the export.
		if order.Status == model.OrderStatusEditable {
			continue
		}
		for _, line := range order.OrderItems {
			values := []interface{}{
				order.ID,
				order.User.Email,
				string(order.Status),
				order.Paid,
				line.Item.Name,
				line.Size,
				line.PlayerName,
				line.PlayerNumber,
				line.Quantity,
				money.FormatCents(line.LineTotalCents),
				money.FormatCents(order.TotalCents),
				order.Note,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to write orders spreadsheet", err)
		return nil, err
	}

	logger.Info("Orders exported", map[string]interface{}{
		"orders": len(orders),
		"rows":   row - 2,
	})
	return buf.Bytes(), nil
}
