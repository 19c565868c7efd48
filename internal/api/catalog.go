package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pharmadesk/m/domain"
)

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Category name is required.")
		return
	}
	category, err := h.store.CreateCategory(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

type supplierRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	ContactInfo string `json:"contactInfo" validate:"max=100"`
	Address     string `json:"address" validate:"max=255"`
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Supplier name is required.")
		return
	}
	supplier, err := h.store.CreateSupplier(r.Context(), domain.Supplier{
		Name:        req.Name,
		ContactInfo: nullIfEmpty(req.ContactInfo),
		Address:     nullIfEmpty(req.Address),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, supplier)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.ListSuppliers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

type medicineRequest struct {
	Name          string          `json:"name" validate:"required,max=150"`
	CategoryID    int64           `json:"categoryId" validate:"required,gt=0"`
	SupplierID    int64           `json:"supplierId" validate:"required,gt=0"`
	Price         decimal.Decimal `json:"price" validate:"gt=0"`
	PurchasePrice decimal.Decimal `json:"purchasePrice" validate:"gte=0"`
	Quantity      int64           `json:"quantity" validate:"gte=0"`
	ExpiryDate    string          `json:"expiryDate"`
	Description   string          `json:"description" validate:"max=255"`
	RackNumber    string          `json:"rackNumber" validate:"max=50"`
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	var expiry *string
	if strings.TrimSpace(req.ExpiryDate) != "" {
		day, err := parseDay(req.ExpiryDate)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		expiry = &day
	}

	medicine, err := h.store.CreateMedicine(r.Context(), domain.Medicine{
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		SupplierID:    req.SupplierID,
		Price:         req.Price,
		PurchasePrice: req.PurchasePrice,
		Quantity:      req.Quantity,
		ExpiryDate:    expiry,
		Description:   nullIfEmpty(req.Description),
		RackNumber:    nullIfEmpty(req.RackNumber),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, medicine)
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.store.ListMedicines(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	medicine, err := h.store.MedicineByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, medicine)
}

type restockRequest struct {
	Quantity int64 `json:"quantity" validate:"gt=0"`
}

func (h *Handler) restockMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req restockRequest
	if !h.decode(w, r, &req) {
		return
	}
	level, err := h.store.Restock(r.Context(), id, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id, "quantity": level})
}

func (h *Handler) expiringMedicines(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.fail(w, r, fmt.Errorf("%w: days %q must be a positive integer", domain.ErrInvalidInput, raw))
			return
		}
		days = parsed
	}
	items, err := h.store.ExpiringMedicines(r.Context(), h.now().UTC(), days)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) inventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Inventory(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
