package handlers

import (
	"net/http"

	"mostralo-api/config"
	"mostralo-api/middleware"
	"mostralo-api/models"

	"github.com/gin-gonic/gin"
)

type CreateStoreRequest struct {
	Name             string `json:"name" binding:"required"`
	Slug             string `json:"slug" binding:"required"`
	Address          string `json:"address"`
	Description      string `json:"description"`
	DeliveryFeeCents int64  `json:"delivery_fee_cents" binding:"min=0"`
}

// CreateStore registers the owner's store (one per account)
func CreateStore(c *gin.Context) {
	ownerID := middleware.GetUserID(c)

	var existing models.Store
	if err := config.DB.Where("owner_id = ?", ownerID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a store"})
		return
	}

	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := models.Store{
		OwnerID:          ownerID,
		Name:             req.Name,
		Slug:             req.Slug,
		Address:          req.Address,
		Description:      req.Description,
		DeliveryFeeCents: req.DeliveryFeeCents,
		IsOpen:           true,
	}
	if err := config.DB.Create(&store).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Store created", "store": store})
}

// GetMyStore returns the owner's store
func GetMyStore(c *gin.Context) {
	store, ok := storeForOwner(c)
	if !ok {
		return
	}
	config.DB.Preload("Products").First(store, store.ID)
	c.JSON(http.StatusOK, gin.H{"store": store})
}

type UpdateStoreRequest struct {
	Name             *string `json:"name"`
	Address          *string `json:"address"`
	Description      *string `json:"description"`
	IsOpen           *bool   `json:"is_open"`
	DeliveryFeeCents *int64  `json:"delivery_fee_cents"`
}

// UpdateStore changes store settings
func UpdateStore(c *gin.Context) {
	store, ok := storeForOwner(c)
	if !ok {
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsOpen != nil {
		updates["is_open"] = *req.IsOpen
	}
	if req.DeliveryFeeCents != nil {
		if *req.DeliveryFeeCents < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery fee cannot be negative"})
			return
		}
		updates["delivery_fee_cents"] = *req.DeliveryFeeCents
	}
	if len(updates) > 0 {
		config.DB.Model(store).Updates(updates)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Store updated", "store": store})
}

type ProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"required,min=1"`
	Category    string `json:"category"`
}

// AddProduct adds a product to the owner's catalog
func AddProduct(c *gin.Context) {
	store, ok := storeForOwner(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		StoreID:     store.ID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		IsAvailable: true,
	}
	if err := config.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product added", "product": product})
}

type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Category    *string `json:"category"`
	IsAvailable *bool   `json:"is_available"`
}

// UpdateProduct edits one of the owner's products
func UpdateProduct(c *gin.Context) {
	store, ok := storeForOwner(c)
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}

	var product models.Product
	if err := config.DB.Where("id = ? AND store_id = ?", productID, store.ID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
			return
		}
		updates["price_cents"] = *req.PriceCents
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if len(updates) > 0 {
		config.DB.Model(&product).Updates(updates)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

// RemoveProduct hides a product from the catalog (soft: availability off)
func RemoveProduct(c *gin.Context) {
	store, ok := storeForOwner(c)
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}

	res := config.DB.Model(&models.Product{}).
		Where("id = ? AND store_id = ?", productID, store.ID).
		Update("is_available", false)
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed from catalog"})
}
