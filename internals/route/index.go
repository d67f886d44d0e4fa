// file: internals/route/index.go
package routes

import (
	"log"
	"os"
	"time"

	authMiddleware "tokoku_backend/internals/middlewares/auth"

	"tokoku_backend/internals/middlewares"
	routeDetails "tokoku_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	// ===================== GATEWAY REGISTRY =====================
	log.Println("[INFO] Building payment gateway registry...")
	registry := routeDetails.BuildGatewayRegistry()

	// ===================== GROUPS =====================

	// PUBLIC → storefront checkout, tanpa auth
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public", middlewares.CheckoutRateLimiter())

	// WEBHOOK → callback provider; keaslian dicek via signature,
	// bukan JWT. Rate limit terpisah supaya retry burst tidak kena
	// limiter global.
	log.Println("[INFO] Setting up WEBHOOK group...")
	webhook := app.Group("/api", middlewares.WebhookRateLimiter())

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
		authMiddleware.RequireAdmin(),
	)

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Base routes...")
	BaseRoutes(app, db)

	log.Println("[INFO] Mounting Payment routes...")
	routeDetails.PaymentPublicRoutes(public, db, registry)
	routeDetails.PaymentWebhookRoutes(webhook, db, registry)
	routeDetails.PaymentAdminRoutes(admin, db, registry)
}
