package cmd

import (
	"log"

	"csv-stream-printer/common"
	"csv-stream-printer/exports"
	"csv-stream-printer/imports"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(loadConfig func() (*common.Config, error)) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the parse-jobs HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			db, err := common.Init(cfg.DBPath)
			if err != nil {
				return err
			}
			if err := common.AutoMigrateJobs(db); err != nil {
				return err
			}

			// Ensure database connection is closed on exit
			sqlDB, err := db.DB()
			if err != nil {
				log.Println("Failed to get sql.DB:", err)
			} else {
				defer sqlDB.Close()
			}

			common.UploadsDir = cfg.UploadsDir
			common.OutputDir = cfg.OutputDir
			imports.ParseWorkers = cfg.Workers

			r := NewRouter(cfg)

			log.Printf("Server starting on port %s...", cfg.Port)
			return r.Run(":" + cfg.Port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides config and PORT)")
	return cmd
}

// NewRouter wires the health check, metrics, auth and the v1 import/export routes
func NewRouter(cfg *common.Config) *gin.Engine {
	r := gin.Default()
	r.RedirectTrailingSlash = false
	r.Use(common.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1", common.AuthMiddleware(cfg.JWTSecret))
	imports.RegisterRoutes(v1.Group("/imports"))
	exports.RegisterRoutes(v1.Group("/exports"))

	return r
}
