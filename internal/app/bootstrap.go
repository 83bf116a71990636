package app

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"linklens/internal/config"
	"linklens/internal/delivery/http/middleware"
	"linklens/internal/delivery/http/routes"
	wshub "linklens/internal/ws"
)

type App struct {
	Fiber *fiber.App
	Hub   *wshub.Hub
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	hub := wshub.NewHub(c.Logger)
	wshub.SetDefaultHub(hub)
	go hub.Run()

	registerGlobalMiddleware(f, c)
	routes.NewRegistry(c.Config, c.DB, c.Cache, hub, c.Logger).Register(f)

	return &App{Fiber: f, Hub: hub}
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	c, err := NewContainer(cfg, nil)
	if err != nil {
		return nil, nil, err
	}

	app := New(c)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewErrorMiddleware().Middleware())
	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
