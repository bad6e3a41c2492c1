package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/freshnest/freshnest-api/internal/api"
	apiMiddleware "github.com/freshnest/freshnest-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	orderHandler := api.NewOrderHandler(app.orderService)
	giftCardHandler := api.NewGiftCardHandler(app.giftCardService)
	offerHandler := api.NewOfferHandler(app.specialOfferService)
	apartmentHandler := api.NewApartmentHandler(app.apartmentService)
	subscriptionHandler := api.NewSubscriptionHandler(app.subscriptionService)
	catalogHandler := api.NewCatalogHandler(app.catalogStore)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Get("/catalog/service-types", catalogHandler.ListServiceTypes)
		r.Get("/catalog/services", catalogHandler.ListServices)
		r.Get("/catalog/extra-services", catalogHandler.ListExtraServices)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", authHandler.Me)
			r.Put("/users/me", authHandler.UpdateProfile)

			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Put("/orders/{id}", orderHandler.UpdateOrder)
			r.Post("/orders/{id}/calculate", orderHandler.CalculateAdditionalAmount)
			r.Post("/orders/{id}/cancel", orderHandler.CancelOrder)
			r.Post("/orders/{id}/done", orderHandler.MarkOrderAsDone)

			r.Post("/gift-cards", giftCardHandler.Purchase)
			r.Post("/gift-cards/{id}/paid", giftCardHandler.MarkPaid)
			r.Get("/gift-cards/validate", giftCardHandler.Validate)
			r.Post("/gift-cards/apply", giftCardHandler.Apply)
			r.Get("/gift-cards/{id}/usages", giftCardHandler.Usages)

			r.Post("/offers", offerHandler.CreateOffer)
			r.Get("/offers/available", offerHandler.AvailableOffers)
			r.Get("/offers/{id}", offerHandler.GetOffer)
			r.Delete("/offers/{id}", offerHandler.DeactivateOffer)
			r.Get("/offers/{id}/validate", offerHandler.ValidateOffer)
			r.Post("/offers/use", offerHandler.UseOffer)

			r.Post("/apartments", apartmentHandler.Create)
			r.Get("/apartments", apartmentHandler.List)
			r.Get("/apartments/{id}", apartmentHandler.Get)
			r.Put("/apartments/{id}", apartmentHandler.Update)
			r.Delete("/apartments/{id}", apartmentHandler.Delete)

			r.Post("/subscriptions", subscriptionHandler.Create)
			r.Get("/subscriptions", subscriptionHandler.List)
			r.Get("/subscriptions/{id}", subscriptionHandler.Get)
			r.Put("/subscriptions/{id}", subscriptionHandler.Update)
			r.Post("/subscriptions/{id}/cancel", subscriptionHandler.Cancel)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
