package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouteRegistrar mounts domain routes on the router.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRoutes)
}

type Options struct {
	StaticRoot  string
	CORSOrigins []string
	Logger      zerolog.Logger
}

func NewRouter(db HealthChecker, opts Options, registrars ...RouteRegistrar) *gin.Engine {
	var origins []string
	for _, o := range opts.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(opts.Logger),
		recovery(opts.Logger),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.Static("/static", opts.StaticRoot)
	router.StaticFile("/", filepath.Join(opts.StaticRoot, "index.html"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	for _, r := range registrars {
		r.RegisterRoutes(router)
	}

	return router
}

// DetectStaticRoot looks for the form page under web/ in the working
// directory and up to two parents.
func DetectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "web"
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		webDir := filepath.Join(dir, "web")
		if fileExists(filepath.Join(webDir, "index.html")) {
			return webDir
		}
	}

	return filepath.Join(startDir, "web")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
