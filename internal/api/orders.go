package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/metrics"
	"pharmadesk/m/internal/store"
)

type saleItemRequest struct {
	MedicineID int64           `json:"medicineId" validate:"required,gt=0"`
	Quantity   int64           `json:"quantity" validate:"gt=0"`
	Price      decimal.Decimal `json:"price" validate:"gt=0"`
}

type saleRequest struct {
	CustomerID    int64             `json:"customerId" validate:"required,gt=0"`
	InvoiceNumber string            `json:"invoiceNumber" validate:"max=50"`
	OrderDate     string            `json:"orderDate"`
	Status        string            `json:"status"`
	Items         []saleItemRequest `json:"items" validate:"dive"`
}

type saleResponse struct {
	Message string       `json:"message"`
	OrderID int64        `json:"orderId"`
	Order   domain.Order `json:"order"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		h.metrics.OrderOutcome(metrics.OrderRejected)
		h.fail(w, r, domain.ErrEmptyOrder)
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.metrics.OrderOutcome(metrics.OrderRejected)
		h.fail(w, r, err)
		return
	}
	orderDate, err := parseOrderDate(req.OrderDate)
	if err != nil {
		h.metrics.OrderOutcome(metrics.OrderRejected)
		h.fail(w, r, err)
		return
	}

	in := domain.NewOrder{
		CustomerID:    req.CustomerID,
		InvoiceNumber: req.InvoiceNumber,
		OrderDate:     orderDate,
		Status:        status,
		Items:         make([]domain.OrderItem, len(req.Items)),
	}
	if claims, ok := claimsFrom(r.Context()); ok {
		in.CreatedBy = claims.UserID
	}
	var units int64
	for i, item := range req.Items {
		in.Items[i] = domain.OrderItem{MedicineID: item.MedicineID, Quantity: item.Quantity, Price: item.Price}
		units += item.Quantity
	}

	order, err := h.store.CreateOrder(r.Context(), in)
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			h.metrics.OrderOutcome(metrics.OrderInsufficientStock)
			h.log.Warn("sale rejected for insufficient stock",
				zap.Int64("medicine_id", stockErr.MedicineID),
				zap.Int64("requested", stockErr.Requested))
		} else {
			h.metrics.OrderOutcome(metrics.OrderRejected)
		}
		h.fail(w, r, err)
		return
	}

	h.metrics.OrderOutcome(metrics.OrderCreated)
	h.metrics.UnitsSold(units)
	h.log.Info("sale recorded",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", order.CustomerID),
		zap.String("total", order.TotalAmount.String()))
	respondJSON(w, http.StatusCreated, saleResponse{Message: "Sale saved successfully", OrderID: order.ID, Order: order})
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var filter store.OrderFilter
	for param, dest := range map[string]*string{"from": &filter.From, "to": &filter.To} {
		raw := strings.TrimSpace(r.URL.Query().Get(param))
		if raw == "" {
			continue
		}
		day, err := parseDay(raw)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		*dest = day
	}

	orders, err := h.store.ListOrders(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ordersResponse{Orders: orders})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	order, err := h.store.OrderByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// parseOrderDate accepts RFC 3339 or "YYYY-MM-DD HH:MM:SS" and normalises to UTC.
// An empty value is left for the store to stamp.
func parseOrderDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateTime, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.DateTime), nil
		}
	}
	return "", fmt.Errorf("%w: orderDate %q is not a valid timestamp", domain.ErrInvalidInput, raw)
}
