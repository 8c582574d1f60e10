package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"food-marketplace-api/apperr"
	"food-marketplace-api/middleware"
	"food-marketplace-api/models"
)

type AddressRequest struct {
	Street               string  `json:"street" binding:"required"`
	City                 string  `json:"city" binding:"required"`
	State                string  `json:"state" binding:"required"`
	ZipCode              string  `json:"zipCode" binding:"required"`
	Latitude             float64 `json:"latitude" binding:"required"`
	Longitude            float64 `json:"longitude" binding:"required"`
	ApartmentNumber      *string `json:"apartmentNumber"`
	DeliveryInstructions *string `json:"deliveryInstructions"`
	Type                 string  `json:"type"`
	IsDefault            bool    `json:"isDefault"`
}

var addressTypes = map[models.AddressType]bool{
	models.AddressHome:  true,
	models.AddressWork:  true,
	models.AddressOther: true,
}

// ListAddresses returns the caller's addresses, default first
func (h *Handler) ListAddresses(c *gin.Context) {
	var addresses []models.Address
	if err := h.db.Where("user_id = ?", middleware.GetUserID(c)).
		Order("is_default desc, id").Find(&addresses).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to list addresses", err))
		return
	}
	respond(c, http.StatusOK, gin.H{"addresses": addresses}, "")
}

// CreateAddress adds a delivery address. Marking it default clears the
// previous default in the same transaction, so each user has at most one.
func (h *Handler) CreateAddress(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	addrType := models.AddressType(strings.TrimSpace(req.Type))
	if addrType == "" {
		addrType = models.AddressOther
	}
	if !addressTypes[addrType] {
		fail(c, apperr.New(apperr.Validation, "address type must be home, work or other"))
		return
	}

	address := models.Address{
		UserID:               userID,
		Street:               req.Street,
		City:                 req.City,
		State:                req.State,
		ZipCode:              req.ZipCode,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		ApartmentNumber:      req.ApartmentNumber,
		DeliveryInstructions: req.DeliveryInstructions,
		Type:                 addrType,
		IsDefault:            req.IsDefault,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).
				UpdateColumn("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to create address", err))
		return
	}

	respond(c, http.StatusCreated, gin.H{"address": address}, "address created")
}

// UpdateAddress edits one of the caller's addresses
func (h *Handler) UpdateAddress(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var address models.Address
	if err := h.db.First(&address, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "address not found"))
		return
	}
	if address.UserID != userID {
		fail(c, apperr.New(apperr.Forbidden, "this address does not belong to you"))
		return
	}

	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	addrType := models.AddressType(strings.TrimSpace(req.Type))
	if addrType == "" {
		addrType = address.Type
	}
	if !addressTypes[addrType] {
		fail(c, apperr.New(apperr.Validation, "address type must be home, work or other"))
		return
	}

	address.Street = req.Street
	address.City = req.City
	address.State = req.State
	address.ZipCode = req.ZipCode
	address.Latitude = req.Latitude
	address.Longitude = req.Longitude
	address.ApartmentNumber = req.ApartmentNumber
	address.DeliveryInstructions = req.DeliveryInstructions
	address.Type = addrType
	address.IsDefault = req.IsDefault

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ? AND id <> ?", userID, address.ID).
				UpdateColumn("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(&address).Error
	})
	if err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to update address", err))
		return
	}

	respond(c, http.StatusOK, gin.H{"address": address}, "address updated")
}

// DeleteAddress removes an address unless an order still references it
func (h *Handler) DeleteAddress(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var address models.Address
	if err := h.db.First(&address, c.Param("id")).Error; err != nil {
		fail(c, apperr.New(apperr.NotFound, "address not found"))
		return
	}
	if address.UserID != userID {
		fail(c, apperr.New(apperr.Forbidden, "this address does not belong to you"))
		return
	}

	var inUse int64
	if err := h.db.Model(&models.Order{}).Where("address_id = ?", address.ID).Count(&inUse).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to check address usage", err))
		return
	}
	if inUse > 0 {
		fail(c, apperr.New(apperr.Validation, "address is referenced by existing orders"))
		return
	}

	if err := h.db.Delete(&address).Error; err != nil {
		fail(c, apperr.Wrap(apperr.Store, "failed to delete address", err))
		return
	}
	respond(c, http.StatusOK, nil, "address deleted")
}
