package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	mw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/validation"
)

type Deps struct {
	DB *gorm.DB

	AuthHandler    *AuthHTTP
	UserHandler    *UserHTTP
	CatalogHandler *CatalogHTTP
	LikeHandler    *LikeHTTP
	OrderHandler   *OrderHTTP
	SearchHandler  *SearchHTTP
	// UploadsHandler serves images from object storage. Local images are
	// served statically by main instead.
	UploadsHandler *UploadsHTTP

	Tokens mw.TokenParser
	// AuthLimiter guards register and login. Optional.
	AuthLimiter echo.MiddlewareFunc
	// Metrics exposes prometheus collectors. Optional.
	Metrics http.Handler
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = validation.New()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}
	if d.UploadsHandler != nil {
		e.GET("/uploads/*", d.UploadsHandler.Serve)
	}

	requireAuth := mw.RequireAuth(d.Tokens)
	optionalAuth := mw.OptionalAuth(d.Tokens)

	api := e.Group("/api")

	auth := api.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter)
	}
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	user := api.Group("/user", requireAuth)
	user.GET("", d.UserHandler.GetMe)
	user.PUT("", d.UserHandler.UpdateMe)
	user.DELETE("", d.UserHandler.DeleteMe)

	products := api.Group("/product")
	products.GET("", d.CatalogHandler.GetProducts, optionalAuth)
	products.GET("/search", d.SearchHandler.Handler, optionalAuth)
	products.GET("/categories", d.CatalogHandler.Categories)
	products.GET("/sizes", d.CatalogHandler.Sizes)
	products.GET("/colors", d.CatalogHandler.Colors)
	products.GET("/:id", d.CatalogHandler.GetProduct, optionalAuth)
	products.POST("/:id/like", d.LikeHandler.Like, requireAuth)
	products.DELETE("/:id/like", d.LikeHandler.Unlike, requireAuth)

	admin := products.Group("", requireAuth, mw.RequireAdmin)
	admin.POST("", d.CatalogHandler.CreateProduct)
	admin.PUT("/:id", d.CatalogHandler.UpdateProduct)
	admin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	orders := api.Group("/order", requireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.GetOrders)
	orders.GET("/user/:userId", d.OrderHandler.GetOrdersByUser)
	orders.GET("/:id", d.OrderHandler.GetOrder)
}
