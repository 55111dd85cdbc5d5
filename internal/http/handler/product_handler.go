package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tricol/supplierchain/internal/domain"
	"github.com/tricol/supplierchain/internal/http/response"
	"github.com/tricol/supplierchain/internal/repository"
)

type ProductHandler struct {
	products repository.ProductRepository
}

func NewProductHandler(products repository.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List()
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list products", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"products": products, "total": len(products)})
}

func (h *ProductHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	product, err := h.products.FindByReference(reference)
	if errors.Is(err, domain.ErrNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "product not found", map[string]string{"reference": reference})
		return
	}
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, product)
}
