package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"food-marketplace-api/apperr"
	"food-marketplace-api/config"
	"food-marketplace-api/orders"
)

// Handler carries the injected store handle and configuration; no package
// globals.
type Handler struct {
	db     *gorm.DB
	cfg    config.Config
	orders *orders.Service
}

func New(db *gorm.DB, cfg config.Config) *Handler {
	return &Handler{
		db:     db,
		cfg:    cfg,
		orders: orders.NewService(db, cfg.TaxRate),
	}
}

// respond writes the success envelope
func respond(c *gin.Context, status int, data any, message string) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// fail maps a domain error onto the error envelope
func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"success": false, "message": apperr.Message(err)})
}

// bindJSON binds and validates the request body, answering 400 on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": bindMessage(err)})
		return false
	}
	return true
}

func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, "field '"+fe.Field()+"' failed validation '"+fe.Tag()+"'")
		}
		return strings.Join(parts, "; ")
	}
	return "invalid request body"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
