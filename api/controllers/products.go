package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wittyvishnu/starfashion-backend/api/responses"
	"github.com/wittyvishnu/starfashion-backend/internal/products"
	"github.com/wittyvishnu/starfashion-backend/pkg/db/models"
	pkgerrors "github.com/wittyvishnu/starfashion-backend/pkg/errors"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
)

type productListResponse struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ListProducts serves the public catalog with optional gender, category and
// text filters.
func ListProducts(repo products.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := products.Filters{
			Gender: strings.TrimSpace(r.URL.Query().Get("gender")),
			Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category_id must be a valid uuid"))
				return
			}
			filters.CategoryID = &categoryID
		}

		items, nextCursor, err := repo.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products"))
			return
		}
		responses.WriteSuccess(w, productListResponse{Products: items, NextCursor: nextCursor})
	}
}

// GetProduct serves one catalog entry by id.
func GetProduct(repo products.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := repo.FindByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}
