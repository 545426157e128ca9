// controllers/client.go
package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

const clientSearchLimit = 10

type CreateClientInput struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Notes string `json:"notes"`
}

type UpdateClientInput struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

type ClientController struct {
	clients *repository.ClientRepository
}

func NewClientController(clients *repository.ClientRepository) *ClientController {
	return &ClientController{clients: clients}
}

func (cc *ClientController) CreateClient(c *gin.Context) {
	var input CreateClientInput
	if !bindJSON(c, &input) {
		return
	}

	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		utils.RespondWithAppError(c, utils.InvalidInput("Name is required"))
		return
	}
	if !utils.ValidatePhone(phone) {
		utils.RespondWithAppError(c, utils.InvalidInput("Invalid phone number"))
		return
	}

	client := models.Client{
		Name:   name,
		Phone:  phone,
		Notes:  input.Notes,
		Status: models.StatusActive,
	}
	if err := cc.clients.Create(c.Request.Context(), &client); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to create client", err))
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClients lists active clients by name.
func (cc *ClientController) GetClients(c *gin.Context) {
	clients, err := cc.clients.ListActive(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to retrieve clients", err))
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (cc *ClientController) SearchClients(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, []models.Client{})
		return
	}

	clients, err := cc.clients.Search(c.Request.Context(), q, clientSearchLimit)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to search clients", err))
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (cc *ClientController) GetClient(c *gin.Context) {
	id, ok := pathID(c, "id", "Client not found")
	if !ok {
		return
	}

	client, err := cc.clients.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, storeError(err, "Client not found", "", "Database error"))
		return
	}
	c.JSON(http.StatusOK, client)
}

func (cc *ClientController) UpdateClient(c *gin.Context) {
	id, ok := pathID(c, "id", "Client not found")
	if !ok {
		return
	}

	var input UpdateClientInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	client, err := cc.clients.Get(ctx, id)
	if err != nil {
		utils.RespondWithAppError(c, storeError(err, "Client not found", "", "Database error"))
		return
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			utils.RespondWithAppError(c, utils.InvalidInput("Name cannot be empty"))
			return
		}
		client.Name = name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if !utils.ValidatePhone(phone) {
			utils.RespondWithAppError(c, utils.InvalidInput("Invalid phone number"))
			return
		}
		client.Phone = phone
	}
	if input.Notes != nil {
		client.Notes = *input.Notes
	}

	if err := cc.clients.Save(ctx, client); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to update client", err))
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient deactivates the client. Visit history is kept.
func (cc *ClientController) DeleteClient(c *gin.Context) {
	cc.setStatus(c, models.StatusInactive, "Client deactivated")
}

func (cc *ClientController) ReactivateClient(c *gin.Context) {
	cc.setStatus(c, models.StatusActive, "Client reactivated")
}

func (cc *ClientController) setStatus(c *gin.Context, status models.Status, message string) {
	id, ok := pathID(c, "id", "Client not found")
	if !ok {
		return
	}

	client, err := cc.clients.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		utils.RespondWithAppError(c, storeError(err, "Client not found", "", "Failed to update client"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "client": client})
}
