package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/atiapp/inviteboard/internal/model"
	"github.com/atiapp/inviteboard/internal/report"
)

func getReportHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		invs := app.dbm.InvitationQuery().Status(model.StatusConfirmed).Full().Order("date, time").Get()

		titleOf := func(personID *uint) string {
			if personID == nil {
				return ""
			}

			if p := app.dbm.PersonQuery().Id(*personID).One(); p != nil {
				return p.Title
			}

			return ""
		}

		var buf bytes.Buffer

		if err := report.WriteConfirmed(&buf, invs, titleOf); err != nil {
			return serverError(ctx, err)
		}

		name := fmt.Sprintf("confirmados_%s.xlsx", time.Now().Format("20060102_1504"))

		ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)

		return ctx.Send(buf.Bytes())
	}
}

func getStatsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		from := model.ParseDateFlexible(ctx.Query("date_from"))
		to := model.ParseDateFlexible(ctx.Query("date_to"))

		return ctx.JSON(app.dbm.Stats(from, to))
	}
}

func getCountersHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(app.dbm.Counters())
	}
}

func getRefsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(app.refs.Data())
	}
}

func getNotificationsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		q := app.dbm.NotificationQuery()

		if id := ctx.Query("invitation"); id != "" {
			q = q.Invitation(id)
		}

		if ctx.QueryBool("unsent") {
			q = q.Unsent()
		}

		ns := q.Get()

		dtos := make([]*model.NotificationDTO, len(ns))
		for i, n := range ns {
			dtos[i] = n.DTO()
		}

		return ctx.JSON(dtos)
	}
}

// getNotificationsSentHandler acknowledges delivered snapshot rows. External
// senders poll unsent notifications and post the ids here once pushed.
func getNotificationsSentHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var req struct {
			Ids []uint `json:"ids"`
		}

		if err := ctx.BodyParser(&req); err != nil {
			return badRequest(ctx, "cuerpo inválido")
		}

		if err := app.dbm.MarkNotificationsSent(req.Ids); err != nil {
			return serverError(ctx, err)
		}

		return ctx.JSON(fiber.Map{"ok": true, "marked": len(req.Ids)})
	}
}
