package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/http/middleware"
)

// InitRouter registers the middleware chain and all routes on server.
func InitRouter(server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	server.Use(
		middleware.Logger(),
		// Recovery keeps a panicking handler from crashing the server
		middleware.Recovery(),
		middleware.CORS(),
		middleware.ErrorHandler(),
	)

	server.GET("/ping", ctr.Ping)

	products := server.Group("/api/products")
	{
		products.GET("", productCtr.ListProducts)
		products.GET("/stats", productCtr.GetProductStats)
		products.GET("/:id", productCtr.GetProduct)
		products.POST("", productCtr.CreateProduct)
		products.PUT("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	return server
}
