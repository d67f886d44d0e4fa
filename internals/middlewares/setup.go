// file: internals/middlewares/setup.go
package middlewares

import (
	"github.com/gofiber/fiber/v2"

	logger "tokoku_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware dasar dgn urutan aman:
// recovery paling luar, lalu CORS, logger, rate limiter global.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}
