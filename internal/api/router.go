package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/api/handlers"
	"github.com/longnd/toystore-service/internal/api/middleware"
	"github.com/longnd/toystore-service/internal/cache"
	"github.com/longnd/toystore-service/internal/models"
	"github.com/longnd/toystore-service/internal/repository"
	"github.com/longnd/toystore-service/internal/service"
	"github.com/longnd/toystore-service/pkg/config"
)

// NewRouter wires repositories, services and handlers and builds the HTTP
// router. The CartService is returned as well so main can run the expiry
// sweeper against the same instance.
func NewRouter(db *sql.DB, cfg *config.Config, logger *zap.Logger) (http.Handler, *service.CartService) {
	// repositories
	productRepo := repository.NewProductRepo(db)
	cartRepo := repository.NewGuestCartRepo(db)
	voucherRepo := repository.NewVoucherRepo(db)
	usageRepo := repository.NewUsageRepo(db)
	shippingRepo := repository.NewShippingRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	bannerRepo := repository.NewBannerRepo(db)
	userRepo := repository.NewUserRepo(db)

	// services
	fallbackFee, err := decimal.NewFromString(cfg.FallbackShippingFee)
	if err != nil {
		logger.Warn("invalid FALLBACK_SHIPPING_FEE, using 30000", zap.String("value", cfg.FallbackShippingFee))
		fallbackFee = decimal.NewFromInt(30000)
	}
	ruleCache := cache.NewRuleCache(time.Duration(cfg.RuleCacheTTLSeconds) * time.Second)

	shippingSvc := service.NewShippingService(shippingRepo, ruleCache, fallbackFee, logger)
	voucherSvc := service.NewVoucherService(db, voucherRepo, usageRepo, logger)
	cartSvc := service.NewCartService(cartRepo, productRepo, time.Duration(cfg.CartLineTTLHours)*time.Hour, logger)
	orderSvc := service.NewOrderService(db, orderRepo, logger)
	checkoutSvc := service.NewCheckoutService(cartRepo, shippingSvc, voucherSvc, orderRepo, logger)

	// handlers
	cartHandler := handlers.NewCartHandler(cartSvc)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutSvc)
	voucherHandler := handlers.NewVoucherHandler(voucherSvc, voucherRepo)
	shippingHandler := handlers.NewShippingHandler(shippingSvc, shippingRepo, ruleCache)
	orderHandler := handlers.NewOrderHandler(orderSvc)
	catalogHandler := handlers.NewCatalogHandler(productRepo, reviewRepo, bannerRepo)
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)

	requireAuth := middleware.Auth(cfg.JWTSecret)
	requireAdmin := middleware.Auth(cfg.JWTSecret, models.RoleAdmin)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)

	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", catalogHandler.ListProducts)
		r.Get("/{productID}", catalogHandler.GetProduct)
		r.Get("/{productID}/reviews", catalogHandler.ListReviews)
		r.With(requireAuth).Post("/{productID}/reviews", catalogHandler.CreateReview)
	})

	r.Get("/banners", catalogHandler.ListBanners)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Post("/items", cartHandler.AddLine)
		r.Put("/items/{productID}", cartHandler.UpdateQuantity)
		r.Post("/items/{productID}/select", cartHandler.SelectLine)
		r.Delete("/items/{productID}", cartHandler.RemoveLine)
	})

	r.With(optionalAuth).Post("/checkout", checkoutHandler.Checkout)

	r.With(optionalAuth).Post("/vouchers/check", voucherHandler.CheckVoucher)

	r.Get("/shipping/fee", shippingHandler.GetFee)

	r.Route("/orders", func(r chi.Router) {
		r.With(requireAuth).Get("/", orderHandler.ListMine)
		r.Get("/{orderID}", orderHandler.GetOrder)
		r.Get("/{orderID}/history", orderHandler.GetHistory)
	})

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/vouchers", voucherHandler.CreateVoucher)
		r.Post("/shipping-rules", shippingHandler.CreateRule)
		r.Post("/orders/{orderID}/status", orderHandler.Transition)
		r.Post("/banners", catalogHandler.CreateBanner)
		r.Delete("/banners/{bannerID}", catalogHandler.DisableBanner)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r, cartSvc
}
