// Package app wires the HTTP surface together
package app

import (
	"time"

	"webbot/file-api/app/file"
	"webbot/file-api/app/root"
	"webbot/file-api/internal"
	"webbot/file-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var cacheStore = persist.NewMemoryStore(time.Minute)

// NewRouter builds the gin engine around explicitly provided dependencies
// so tests can run the full HTTP surface against their own store and fakes.
func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	origins := viper.GetStringSlice("host.cors_origins")
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	requireJSON := middleware.RequireJSON()

	// GET /healthcheck		-> Used to check if the server is alive
	router.GET("/healthcheck", cacheFor(5), root.Healthcheck)

	files := router.Group("/files")
	{
		// GET /files			-> Lists records, optionally filtered
		files.GET("", func(c *gin.Context) { file.FileList(c, d) })

		// POST /files			-> Creates a new record from a JSON payload
		files.POST("", requireJSON, func(c *gin.Context) { file.FileCreate(c, d) })

		// GET /files/:id		-> Returns a single record
		files.GET("/:id", func(c *gin.Context) { file.FileFetch(c, d) })

		// PUT /files/:id		-> Replaces a record's fields
		files.PUT("/:id", requireJSON, func(c *gin.Context) { file.FileUpdate(c, d) })

		// DELETE /files/:id		-> Soft deletes a record, always 204
		files.DELETE("/:id", func(c *gin.Context) { file.FileDelete(c, d) })

		// POST /files/upload/:webbotID	-> Uploads one or more files for a webbot
		upload := files.Group("/upload")
		if maxUpload := viper.GetInt64("upload.max_size"); maxUpload > 0 {
			upload.Use(middleware.BodySizeLimiter(maxUpload))
		}
		upload.POST("/:webbotID", func(c *gin.Context) { file.FileUpload(c, d) })

		// GET /files/download/:webbotID/:fileID -> Streams a stored file back
		files.GET("/download/:webbotID/:fileID", func(c *gin.Context) { file.FileDownload(c, d) })
	}

	return router
}

// MakeLogger replaces the global zap logger with the app's development
// style console logger at the configured level.
func MakeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
}
