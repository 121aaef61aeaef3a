package api

import (
	"time"

	_ "sdhash/api/docs"
	"sdhash/api/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Perceptual Fingerprint API
// @version 1.0
// @description Exact-match duplicate detection for images and animations using DCT fingerprints
// @BasePath /
func Router(hand *handler.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if hand.MaxUploadBytes > 0 {
		// two files per compare request plus form overhead
		r.MaxMultipartMemory = 2*hand.MaxUploadBytes + 1<<20
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/fingerprint", hand.FingerprintHandler)
	r.POST("/compare", hand.CompareHandler)
	r.POST("/recognize", hand.RecognizeHandler)

	admin := r.Group("/admin")
	{
		admin.POST("/add", hand.AddImageHandler)
		admin.GET("/images", hand.ListImagesHandler)
		admin.DELETE("/images/:fingerprint", hand.RemoveImageHandler)
		admin.GET("/settings", hand.SettingsHandler)
		admin.GET("/hello", hand.Hello)
	}
	return r
}
