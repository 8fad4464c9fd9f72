package main

import (
	"embed"
	"net/http"
	"runtime/pprof"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atiapp/inviteboard/internal/wshandler"
	"github.com/atiapp/inviteboard/pkg/log"
	"github.com/atiapp/inviteboard/staticfiles"
)

//go:embed templates
var templates embed.FS

type HttpServer struct {
	f    *fiber.App
	app  *App
	addr string
}

func NewHttp(app *App) *HttpServer {
	engine := html.NewFileSystem(http.FS(templates), ".html")
	engine.Delims("[[", "]]")

	f := fiber.New(fiber.Config{
		EnablePrintRoutes:     false,
		DisableStartupMessage: true,
		Views:                 engine,
		BodyLimit:             16 * 1024 * 1024,
	})

	f.Use(log.NewFiberLogger(&log.LoggerConfig{Name: "api", DoMetrics: true}))

	staticfiles.Embed(f)

	f.Get("/", getIndexHandler(app))
	f.Get("/uploads/:name", getUploadHandler(app))

	api := f.Group("/api", noStore())

	api.Get("/catalog", getCatalogHandler(app))
	api.Post("/person/create", getPersonCreateHandler(app))
	api.Post("/person/update", getPersonUpdateHandler(app))
	api.Post("/person/delete", getPersonDeleteHandler(app))

	api.Get("/invitations", getInvitationsHandler(app))
	api.Get("/invitation/:id", getInvitationHandler(app))
	api.Post("/invitation/create", getInvitationCreateHandler(app))
	api.Post("/invitation/update", getInvitationUpdateHandler(app))
	api.Post("/invitation/delete", getInvitationDeleteHandler(app))

	api.Post("/assign", getAssignHandler(app))
	api.Post("/reassign", getReassignHandler(app))
	api.Post("/cancel", getCancelHandler(app))
	api.Post("/status", getStatusHandler(app))
	api.Post("/check-conflict", getCheckConflictHandler(app))

	api.Get("/stats", getStatsHandler(app))
	api.Get("/counters", getCountersHandler(app))
	api.Get("/refs", getRefsHandler(app))
	api.Get("/notifications", getNotificationsHandler(app))
	api.Post("/notifications/sent", getNotificationsSentHandler(app))
	api.Get("/report/confirmados.xlsx", getReportHandler(app))

	f.Get("/ws", getWsHandler(app))

	f.Get("/stack", getStackHandler())
	f.Get("/metrics", getMetricsHandler())

	return &HttpServer{f: f, app: app, addr: app.config.apiAddr}
}

func (h *HttpServer) Start() {
	go func() {
		h.app.logger.Info("listening " + h.addr)

		if err := h.f.Listen(h.addr); err != nil {
			h.app.logger.Error("listen error", "error", err)
		}
	}()
}

// noStore forbids caching of API answers so the dashboard always sees fresh
// data.
func noStore() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ctx.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")
		ctx.Set(fiber.HeaderPragma, "no-cache")
		ctx.Set(fiber.HeaderExpires, "0")

		return ctx.Next()
	}
}

func getIndexHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		data := map[string]any{
			"theme": "auto",
			"page":  " dash",
			"js":    []string{"util.js", "main.js"},
		}

		return ctx.Render("templates/index", data, "templates/header")
	}
}

func getUploadHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		path, err := app.files.Path(ctx.Params("name"))
		if err != nil {
			return ctx.SendStatus(fiber.StatusNotFound)
		}

		return ctx.SendFile(path)
	}
}

func getWsHandler(app *App) fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {
		name := uuid.NewString()

		h := wshandler.NewHandler(app.logger, name, ws)
		app.logger.Info("ws listener connected")
		app.notifCb.Subscribe(name, h.SendNotification)
		h.Listen()
		app.logger.Info("ws listener disconnected")
		app.notifCb.Unsubscribe(name)
	})
}

func getStackHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return pprof.Lookup("goroutine").WriteTo(ctx.Response().BodyWriter(), 1)
	}
}

func getMetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{DisableCompression: true},
	))
}
