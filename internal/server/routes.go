package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taproom/taproom/internal/catalog"
	"github.com/taproom/taproom/internal/models"
	"gorm.io/gorm"
)

// registerRoutes sets up the REST API the touch UI polls between voice
// commands.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/api/products", handleProducts(db))
	router.GET("/api/categories", handleCategories(db))
	router.GET("/api/orders", handleOrders(db))
	router.GET("/api/orders/:id", handleOrder(db))
	router.GET("/api/cart/:session_id", handleCart(db))
}

func handleProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		matches, err := catalog.Search(db, c.Query("q"), c.Query("category"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		products := make([]models.Product, len(matches))
		for i, m := range matches {
			products[i] = m.Product
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func handleCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := catalog.ListCategories(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": cats})
	}
}

func handleOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Preload("Items").Order("created_at DESC").Limit(50)
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		var orders []models.Order
		if err := q.Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func handleOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var o models.Order
		err := db.Preload("Items").First(&o, "id = ?", c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func handleCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var o models.Order
		err := db.Preload("Items").
			Where("session_id = ? AND status = ?", c.Param("session_id"), models.OrderPending).
			First(&o).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"items": []models.OrderItem{}, "total_cents": 0})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
