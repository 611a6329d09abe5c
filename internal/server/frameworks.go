package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/taisey/cors"
	"github.com/taisey/cors/corsfiber"
	"github.com/taisey/cors/corsgin"
)

func (s *Server) ginRouter() http.Handler {
	if s.cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginRequestID)
	router.Use(corsgin.New(s.cors, corsgin.WithLogger(s.log)))

	router.GET("/hello", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, World!")
	})
	router.GET("/status-error", func(c *gin.Context) {
		c.Error(&cors.StatusError{Status: http.StatusInternalServerError})
	})
	router.GET("/response-error", func(c *gin.Context) {
		c.Error(&cors.ResponseError{Response: errorResponse()})
	})
	router.GET("/panic", func(*gin.Context) {
		panic(errBoom)
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":       "NOT_FOUND",
				"message":    "The requested resource was not found",
				"request_id": c.GetString(requestIDKey),
			},
		})
	})
	return router
}

func (s *Server) fiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          corsfiber.ErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           s.cfg.Server.ReadTimeout,
		WriteTimeout:          s.cfg.Server.WriteTimeout,
	})
	app.Use(fiberRequestID)
	app.Use(corsfiber.New(s.cors))

	app.Get("/hello", func(c *fiber.Ctx) error {
		return c.SendString("Hello, World!")
	})
	app.Get("/status-error", func(*fiber.Ctx) error {
		return &cors.StatusError{Status: http.StatusInternalServerError}
	})
	app.Get("/response-error", func(*fiber.Ctx) error {
		return &cors.ResponseError{Response: errorResponse()}
	})
	app.Get("/panic", func(*fiber.Ctx) error {
		panic(errBoom)
	})
	return app
}
