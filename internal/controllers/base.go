package controllers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/drstein77/shophub/internal/compress"
	"github.com/drstein77/shophub/internal/middleware"
	"github.com/drstein77/shophub/internal/models"
	"github.com/drstein77/shophub/internal/storage"
)

// Storage interface for the shopping session
type Storage interface {
	Status(context.Context) models.CatalogStatus
	Reload(context.Context) error
	Categories(context.Context) []string
	VisibleProducts(context.Context) []models.Product
	Filter(context.Context) models.Filter
	UpdateFilter(ctx context.Context, category *string, maxPrice *decimal.Decimal) models.Filter
	ResetFilter(context.Context) models.Filter
	Cart(context.Context) storage.CartView
	AddToCart(ctx context.Context, id int) (storage.CartView, error)
	UpdateQuantity(ctx context.Context, id, delta int) storage.CartView
	RemoveFromCart(ctx context.Context, id int) storage.CartView
}

// Log interface for logging
type Log interface {
	Info(string, ...zapcore.Field)
	Error(string, ...zapcore.Field)
}

// BaseController struct for handling requests
type BaseController struct {
	storage   Storage
	validator *Validator
	log       Log
}

// NewBaseController creates a new BaseController instance
func NewBaseController(storage Storage, log Log) *BaseController {
	return &BaseController{
		storage:   storage,
		validator: NewValidator(),
		log:       log,
	}
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/", h.page)
	r.Route("/ui", func(r chi.Router) {
		r.Post("/reload", h.formReload)
		r.Post("/filter", h.formFilter)
		r.Post("/filter/reset", h.formResetFilter)
		r.Post("/cart/add", h.formAdd)
		r.Post("/cart/update", h.formUpdate)
		r.Post("/cart/remove", h.formRemove)
	})

	r.Route("/api/v0", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CompressResponseMiddleware)
			r.Get("/status", h.getStatus)
			r.Get("/categories", h.getCategories)
			r.Get("/products", h.getProducts)
			r.Get("/filter", h.getFilter)
			r.Get("/cart", h.getCart)
		})

		r.With(middleware.ArchiveTypeMiddleware).Get("/products/export", h.exportProducts)

		r.Post("/catalog/reload", h.reload)
		r.Put("/filter", h.putFilter)
		r.Post("/filter/reset", h.resetFilter)
		r.Post("/cart/items", h.addItem)
		r.Patch("/cart/items/{id}", h.updateItem)
		r.Delete("/cart/items/{id}", h.removeItem)
		r.Post("/checkout", h.checkout)
	})

	return r
}

type filterRequest struct {
	Category *string         `json:"category"`
	MaxPrice *decimal.Decimal `json:"maxPrice" validate:"omitempty,gte=0,lte=1000"`
}

type addItemRequest struct {
	ID *int `json:"id" validate:"required"`
}

type quantityRequest struct {
	Delta *int `json:"delta" validate:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *BaseController) getStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.storage.Status(r.Context()))
}

func (h *BaseController) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Reload(r.Context()); err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, h.storage.Status(r.Context()))
}

func (h *BaseController) getCategories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.storage.Categories(r.Context()))
}

func (h *BaseController) getProducts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.storage.VisibleProducts(r.Context()))
}

func (h *BaseController) exportProducts(w http.ResponseWriter, r *http.Request) {
	archiveType := middleware.ArchiveType(r.Context())
	products := h.storage.VisibleProducts(r.Context())

	w.Header().Set("Content-Type", compress.ContentType(archiveType))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=products.%s", archiveType))

	aw, err := compress.NewArchiveWriter(archiveType, w, "products.csv")
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := writeProductsCSV(aw, products); err != nil {
		h.log.Error("Failed to write export", zap.Error(err))
		return
	}
	if err := aw.Close(); err != nil {
		h.log.Error("Failed to finish export archive", zap.Error(err))
	}
}

func writeProductsCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "category", "price", "rating_rate", "rating_count"}); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{
			strconv.Itoa(p.ID),
			p.Title,
			p.Category,
			p.Price.StringFixed(2),
			strconv.FormatFloat(p.Rating.Rate, 'f', -1, 64),
			strconv.Itoa(p.Rating.Count),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (h *BaseController) getFilter(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.storage.Filter(r.Context()))
}

func (h *BaseController) putFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.writeJSON(w, http.StatusOK, h.storage.UpdateFilter(r.Context(), req.Category, req.MaxPrice))
}

func (h *BaseController) resetFilter(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.storage.ResetFilter(r.Context()))
}

func (h *BaseController) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.storage.Cart(r.Context()))
}

func (h *BaseController) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.storage.AddToCart(r.Context(), *req.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *BaseController) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.storage.UpdateQuantity(r.Context(), id, *req.Delta))
}

func (h *BaseController) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.storage.RemoveFromCart(r.Context(), id))
}

// checkout is a placeholder; there is no order backend.
func (h *BaseController) checkout(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotImplemented, "checkout is not available")
}

func (h *BaseController) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *BaseController) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Validate(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *BaseController) writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrNotLoaded), errors.Is(err, storage.ErrConflict):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("Request failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *BaseController) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *BaseController) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}
