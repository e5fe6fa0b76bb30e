// Package handler exposes the storefront over a JSON HTTP API.
package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// maxBody bounds request bodies.
const maxBody = 64 << 10

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// AdminKey guards the /api/admin routes. Empty disables the check.
	AdminKey string
}

// Handler serves the catalog, cart, checkout and admin routes.
type Handler struct {
	products product.Repository
	carts    *cart.Registry
	orders   *order.Service
	admin    *AdminGate
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	carts *cart.Registry,
	orders *order.Service,
) *Handler {
	return &Handler{
		products: products,
		carts:    carts,
		orders:   orders,
		admin:    NewAdminGate(cfg.AdminKey),
	}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}/sizes", h.productSizes)

	mux.HandleFunc("POST /api/carts", h.createCart)
	mux.HandleFunc("GET /api/carts/{id}", h.getCart)
	mux.HandleFunc("DELETE /api/carts/{id}", h.deleteCart)
	mux.HandleFunc("POST /api/carts/{id}/items", h.addItem)
	mux.HandleFunc("PUT /api/carts/{id}/items/{productId}", h.updateItem)
	mux.HandleFunc("DELETE /api/carts/{id}/items/{productId}", h.removeItem)
	mux.HandleFunc("POST /api/carts/{id}/checkout", h.checkout)

	mux.Handle("GET /api/admin/orders", h.admin.Wrap(h.listOrders))
	mux.Handle("GET /api/admin/orders/{id}", h.admin.Wrap(h.getOrder))
	mux.Handle("DELETE /api/admin/orders/{id}", h.admin.Wrap(h.removeOrder))
	mux.Handle("DELETE /api/admin/orders", h.admin.Wrap(h.removeAllOrders))
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func errorBody(e *jx.Encoder, status int, msg string) {
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		errorBody(e, status, msg)
		e.ObjEnd()
	})
}

// writeDomainError maps domain errors to HTTP responses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *order.ValidationError
		qerr *order.InvalidQuantityError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, func(e *jx.Encoder) {
			e.ObjStart()
			errorBody(e, http.StatusBadRequest, "invalid shipping info")
			e.FieldStart("errors")
			e.ObjStart()
			for field, msg := range verr.Fields {
				e.FieldStart(field)
				e.Str(msg)
			}
			e.ObjEnd()
			e.ObjEnd()
		})
	case errors.As(err, &qerr):
		writeError(w, http.StatusUnprocessableEntity, qerr.Error())
	case errors.Is(err, order.ErrEmptyCart), errors.Is(err, product.ErrInvalidSize):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, cart.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// readBody decodes the JSON request body with fn.
func readBody(r *http.Request, fn func(d *jx.Decoder) error) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if err := fn(jx.DecodeBytes(body)); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, errors.Errorf("invalid %s %q", name, r.PathValue(name))
	}
	return v, nil
}
