package webserver

import (
	"fmt"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/harings-be/commerce-pricelist/config"
)

// ContextDBKey is the echo context key carrying the *gorm.DB handle.
const ContextDBKey = "gdb"

type WebServer struct {
	appConfig *config.AppConfig
	root      *echo.Echo
	api       *echo.Group
	pub       *echo.Group
}

var server *WebServer

// Init builds the echo server, its middleware chain and the public/api route
// groups. Must be called before any route registration.
func Init(appConfig *config.AppConfig, db *gorm.DB) {
	root := echo.New()
	root.HideBanner = true
	root.Use(middleware.Recover())
	root.Use(injectDB(db))
	root.Use(zapLogger())

	pub := root.Group("/api")
	api := root.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appConfig.Web.Secret),
	}))

	server = &WebServer{
		appConfig: appConfig,
		root:      root,
		api:       api,
		pub:       pub,
	}
}

// Listen starts serving on the configured address, blocking until shutdown.
func Listen() error {
	addr := fmt.Sprintf("%s:%d", server.appConfig.Web.Host, server.appConfig.Web.Port)
	zap.L().Info("admin api listening", zap.String("addr", addr))
	return server.root.Start(addr)
}

// Instance returns the underlying echo server (used in tests).
func Instance() *echo.Echo {
	return server.root
}

func injectDB(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextDBKey, db)
			return next(c)
		}
	}
}

func zapLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Status >= http.StatusInternalServerError {
				zap.L().Error("request",
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status))
			} else {
				zap.L().Debug("request",
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status))
			}
			return nil
		},
	})
}

// ApiGET registers an authenticated GET route.
func ApiGET(path string, h echo.HandlerFunc) {
	server.api.GET(path, h)
}

// ApiPOST registers an authenticated POST route.
func ApiPOST(path string, h echo.HandlerFunc) {
	server.api.POST(path, h)
}

// ApiPUT registers an authenticated PUT route.
func ApiPUT(path string, h echo.HandlerFunc) {
	server.api.PUT(path, h)
}

// ApiDELETE registers an authenticated DELETE route.
func ApiDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE(path, h)
}

// PubPOST registers an unauthenticated POST route (login).
func PubPOST(path string, h echo.HandlerFunc) {
	server.pub.POST(path, h)
}

// Secret returns the JWT signing secret.
func Secret() string {
	return server.appConfig.Web.Secret
}

// JwtExpire returns the configured token lifetime in minutes.
func JwtExpire() int64 {
	return server.appConfig.Web.JwtExpire
}
