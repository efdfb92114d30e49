package main

import (
	"log"

	"lead-import-export/common"
	"lead-import-export/exports"
	"lead-import-export/imports"
	"lead-import-export/leads"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) {
	// Migrate domain models
	leads.AutoMigrate(db)

	// Migrate job tracking tables
	common.AutoMigrateJobs(db)
}

func main() {
	cfg := common.LoadConfig()

	db, err := common.OpenDatabase(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	Migrate(db)

	// Ensure database connection is closed on exit
	sqlDB, err := db.DB()
	if err != nil {
		log.Println("Failed to get sql.DB:", err)
	} else {
		defer sqlDB.Close()
	}

	// Setup Gin router
	r := gin.Default()
	r.RedirectTrailingSlash = false
	r.Use(common.MetricsMiddleware(db))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Exported artifacts (offline SQL batches, CSV exports)
	r.Static("/downloads", cfg.ExportsDir)

	api := r.Group("/")
	api.Use(common.AuthMiddleware(cfg.AuthSecret))
	imports.NewHandler(db, cfg).RegisterRoutes(api)
	exports.NewHandler(db, cfg).RegisterRoutes(api)

	log.Printf("Server starting on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
