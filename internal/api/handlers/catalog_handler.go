package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/longnd/toystore-service/internal/models"
	"github.com/longnd/toystore-service/internal/repository"
)

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type CreateBannerRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url,omitempty"`
	Position int    `json:"position"`
}

type CatalogHandler struct {
	products *repository.ProductRepo
	reviews  *repository.ReviewRepo
	banners  *repository.BannerRepo
}

func NewCatalogHandler(products *repository.ProductRepo, reviews *repository.ReviewRepo, banners *repository.BannerRepo) *CatalogHandler {
	return &CatalogHandler{products: products, reviews: reviews, banners: banners}
}

// ListProducts handles GET /products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListSellable(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// GetProduct handles GET /products/{productID}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id")
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product_not_found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ListReviews handles GET /products/{productID}/reviews
func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id")
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// CreateReview handles POST /products/{productID}/reviews (auth required)
func (h *CatalogHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id")
		return
	}

	cid := customerID(r)
	if cid == nil {
		writeError(w, http.StatusUnauthorized, "authentication_required")
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "invalid_rating")
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "product_not_found")
		return
	}

	reviewID, err := h.reviews.Create(r.Context(), &models.Review{
		ProductID:  id,
		CustomerID: *cid,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed_create_review")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "review_created",
		"review_id": reviewID,
	})
}

// ListBanners handles GET /banners
func (h *CatalogHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.banners.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"banners": banners})
}

// CreateBanner handles POST /admin/banners
func (h *CatalogHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req CreateBannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Title == "" || req.ImageURL == "" {
		writeError(w, http.StatusBadRequest, "title_and_image_url_required")
		return
	}

	id, err := h.banners.Create(r.Context(), &models.Banner{
		Title:    req.Title,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
		Position: req.Position,
		Active:   true,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed_create_banner")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "banner_created",
		"banner_id": id,
	})
}

// DisableBanner handles DELETE /admin/banners/{bannerID}
func (h *CatalogHandler) DisableBanner(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "bannerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_banner_id")
		return
	}

	updated, err := h.banners.SetActive(r.Context(), id, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "banner_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "banner_disabled"})
}
