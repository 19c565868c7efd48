package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/auth"
	"pharmadesk/m/internal/metrics"
	"pharmadesk/m/internal/store"
)

const maxBodyBytes = 1 << 20

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	tokens   *auth.TokenService
	log      *zap.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	now      func() time.Time
}

// New constructs a Handler.
func New(st *store.Store, tokens *auth.TokenService, log *zap.Logger, m *metrics.Metrics) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.New("pharmadesk")
	}
	return &Handler{
		store:    st,
		tokens:   tokens,
		log:      log,
		metrics:  m,
		validate: newValidator(),
		now:      time.Now,
	}
}

// Router wires up the HTTP API under prefix; /health and /metrics stay at the root.
func (h *Handler) Router(prefix string, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	if prefix == "" {
		r.Group(h.routes)
	} else {
		r.Route(prefix, h.routes)
	}
	return r
}

var (
	staffRoles   = []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RolePharmacist}
	managerRoles = []domain.Role{domain.RoleAdmin, domain.RoleManager}
)

func (h *Handler) routes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)

		r.Route("/protected", func(r chi.Router) {
			r.Get("/", h.protected)
			r.With(requireRole(domain.RoleAdmin)).Get("/admin-data", h.adminData)
			r.With(requireRole(managerRoles...)).Get("/manager-data", h.managerData)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/ping", h.ping)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(managerRoles...))
				r.Post("/category", h.createCategory)
				r.Post("/supplier", h.createSupplier)
				r.Post("/medicines", h.createMedicine)
				r.Post("/medicines/{id}/stock", h.restockMedicine)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireRole(staffRoles...))
				r.Get("/categories", h.listCategories)
				r.Get("/suppliers", h.listSuppliers)
				r.Get("/medicines", h.listMedicines)
				r.Get("/medicines/expiring", h.expiringMedicines)
				r.Get("/medicines/{id}", h.getMedicine)
				r.Get("/inventory", h.inventory)

				r.Post("/sales", h.createSale)
				r.Get("/orders", h.listOrders)
				r.Get("/orders/{id}", h.getOrder)
				r.Get("/users", h.listCustomers)

				r.Post("/expenses", h.addExpenses)
				r.Get("/expenses", h.listExpenses)
				r.Get("/AllExpenses", h.listExpenses)
				r.Get("/dailyExpensesTotal", h.dailyExpensesTotal)

				r.Get("/overview", h.overview)
				r.Get("/dailySale", h.dailySale)
				r.Get("/dailyPurchase", h.dailyPurchase)
				r.Get("/dailyProfit", h.dailyProfit)
				r.Get("/daily-summary", h.dailySummary)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireRole(domain.RoleAdmin))
				r.Get("/users/all", h.listUsers)
				r.Put("/users/{id}/role", h.updateUserRole)
				r.Put("/users/{id}/active", h.setUserActive)
			})
		})
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail maps domain errors onto HTTP statuses. Anything unrecognised is logged and
// reported as a 500 without detail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrUnknownMedicine),
		errors.Is(err, domain.ErrUnknownCustomer),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrUnknownSupplier):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode reads a strict JSON body into dest and runs struct validation on it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := decodeJSON(w, r, dest); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := h.validate.Struct(dest); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Namespace()
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		fields = append(fields, fmt.Sprintf("%s (%s)", name, fe.Tag()))
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, chi.URLParam(r, "id"))
	}
	return id, nil
}

// Helpers
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
