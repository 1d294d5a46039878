package upload

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/trove-app/trove-api/internal/config"
	"github.com/trove-app/trove-api/internal/utils"
)

// UploadService issues signed Cloudinary upload parameters so the
// mobile client can upload listing images directly.
type UploadService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewUploadService creates a new UploadService.
func NewUploadService(cfg *config.Config, jwtService *utils.JWTService) *UploadService {
	return &UploadService{cfg: cfg, jwtService: jwtService}
}

// GenerateUploadParams returns a signed parameter set for a direct
// client-side upload. The listing id scopes the upload folder; one is
// generated when the listing does not exist yet.
func (s *UploadService) GenerateUploadParams(c fiber.Ctx) error {
	if s.cfg.CloudinaryConfig.APISecret == "" {
		return utils.ServerError(c, "Image uploads are not configured")
	}

	listingID := c.Query("listing_id")
	if listingID == "" {
		listingID = uuid.New().String()
	} else if !utils.IsValidID(listingID) {
		return utils.BadRequest(c, "Invalid listing ID")
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	folder := fmt.Sprintf("%s/%s", s.cfg.CloudinaryConfig.UploadFolder, listingID)

	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", folder)

	signature, err := api.SignParameters(params, s.cfg.CloudinaryConfig.APISecret)
	if err != nil {
		log.Printf("error signing upload params: %v", err)
		return utils.ServerError(c, "Error generating upload parameters")
	}

	return utils.Success(c, fiber.StatusOK, "Upload parameters generated", fiber.Map{
		"timestamp":  timestamp,
		"folder":     folder,
		"signature":  signature,
		"api_key":    s.cfg.CloudinaryConfig.APIKey,
		"cloud_name": s.cfg.CloudinaryConfig.CloudName,
		"listing_id": listingID,
	})
}
