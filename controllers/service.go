// controllers/service.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name     string   `json:"name" binding:"required"`
	Category string   `json:"category"`
	Price    *float64 `json:"price" binding:"required,min=0"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Name     *string        `json:"name"`
	Category *string        `json:"category"`
	Price    *float64       `json:"price" binding:"omitempty,min=0"`
	Status   *models.Status `json:"status"`
}

type ServiceController struct {
	services *repository.ServiceRepository
}

func NewServiceController(services *repository.ServiceRepository) *ServiceController {
	return &ServiceController{services: services}
}

// AddService adds a catalog entry. Names are unique.
func (sc *ServiceController) AddService(c *gin.Context) {
	var input CreateServiceInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		utils.RespondWithAppError(c, utils.InvalidInput("Name is required"))
		return
	}

	_, err := sc.services.GetByName(ctx, name)
	if err == nil {
		utils.RespondWithAppError(c, utils.Conflict("Service already exists"))
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		utils.RespondWithAppError(c, utils.Internal("Database error", err))
		return
	}

	service := models.Service{
		Name:     name,
		Category: strings.TrimSpace(input.Category),
		Price:    *input.Price,
		Status:   models.StatusActive,
	}
	if err := sc.services.Create(ctx, &service); err != nil {
		utils.RespondWithAppError(c, storeError(err, "", "Service already exists", "Failed to create service"))
		return
	}

	c.JSON(http.StatusCreated, service)
}

// GetServices lists the whole catalog, active and inactive, by name.
func (sc *ServiceController) GetServices(c *gin.Context) {
	services, err := sc.services.List(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to retrieve services", err))
		return
	}
	c.JSON(http.StatusOK, services)
}

func (sc *ServiceController) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "id", "Service not found")
	if !ok {
		return
	}

	var input UpdateServiceInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	service, err := sc.services.Get(ctx, id)
	if err != nil {
		utils.RespondWithAppError(c, storeError(err, "Service not found", "", "Database error"))
		return
	}

	// Update fields if provided
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			utils.RespondWithAppError(c, utils.InvalidInput("Name cannot be empty"))
			return
		}
		service.Name = name
	}
	if input.Category != nil {
		service.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		service.Price = *input.Price
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			utils.RespondWithAppError(c, utils.InvalidInput("Status must be 'active' or 'inactive'"))
			return
		}
		service.Status = *input.Status
	}

	if err := sc.services.Save(ctx, service); err != nil {
		utils.RespondWithAppError(c, storeError(err, "Service not found", "Service already exists", "Failed to update service"))
		return
	}
	c.JSON(http.StatusOK, service)
}

// ToggleServiceStatus flips a service between active and inactive.
func (sc *ServiceController) ToggleServiceStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "Service not found")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	service, err := sc.services.Get(ctx, id)
	if err != nil {
		utils.RespondWithAppError(c, storeError(err, "Service not found", "", "Database error"))
		return
	}

	service.Status = service.Status.Toggled()
	if err := sc.services.Save(ctx, service); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to update service", err))
		return
	}
	c.JSON(http.StatusOK, service)
}
