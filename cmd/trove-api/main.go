package main

import (
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/trove-app/trove-api/internal/config"
	"github.com/trove-app/trove-api/internal/db"
	"github.com/trove-app/trove-api/internal/services/auth"
	"github.com/trove-app/trove-api/internal/services/discovery"
	"github.com/trove-app/trove-api/internal/services/favorite"
	"github.com/trove-app/trove-api/internal/services/listing"
	"github.com/trove-app/trove-api/internal/services/merchant"
	"github.com/trove-app/trove-api/internal/services/message"
	"github.com/trove-app/trove-api/internal/services/offer"
	"github.com/trove-app/trove-api/internal/services/upload"
	"github.com/trove-app/trove-api/internal/services/user"
	"github.com/trove-app/trove-api/internal/worker"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("database initialization failed: %v", err)
	}
	defer pool.Close()

	var cld *cloudinary.Cloudinary
	if cfg.CloudinaryConfig.APISecret != "" {
		cld, err = cloudinary.NewFromParams(
			cfg.CloudinaryConfig.CloudName,
			cfg.CloudinaryConfig.APIKey,
			cfg.CloudinaryConfig.APISecret)
		if err != nil {
			log.Fatalf("cloudinary initialization failed: %v", err)
		}
	} else {
		log.Println("cloudinary not configured, image cleanup disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Trove API",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	authService := auth.NewAuthService(cfg, pool)
	jwtService := authService.GetJWTService()

	authService.SetupRoutes(app)
	user.NewUserService(cfg, pool, jwtService).SetupRoutes(app)
	listing.NewListingService(cfg, pool, jwtService, cld).SetupRoutes(app)
	discovery.NewDiscoveryService(cfg, pool, jwtService).SetupRoutes(app)
	offer.NewOfferService(cfg, pool, jwtService).SetupRoutes(app)
	message.NewMessageService(cfg, pool, jwtService).SetupRoutes(app)
	merchant.NewMerchantService(cfg, pool, jwtService).SetupRoutes(app)
	favorite.NewFavoriteService(cfg, pool, jwtService).SetupRoutes(app)
	upload.NewUploadService(cfg, jwtService).SetupRoutes(app)

	expiryWorker := worker.NewExpiryWorker(cfg, pool)
	if err := expiryWorker.Start(); err != nil {
		log.Fatalf("expiry worker failed to start: %v", err)
	}
	defer expiryWorker.Stop()

	log.Printf("Trove API listening on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler translates unhandled errors into the standard envelope.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
