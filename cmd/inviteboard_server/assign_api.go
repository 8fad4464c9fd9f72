package main

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/atiapp/inviteboard/internal/conflict"
	"github.com/atiapp/inviteboard/internal/database"
	"github.com/atiapp/inviteboard/internal/model"
)

type assignRequest struct {
	ID       uint   `json:"id"`
	PersonID uint   `json:"persona_id"`
	Role     string `json:"rol"`
	Comment  string `json:"comentario"`
	Force    bool   `json:"force"`
}

func getAssignHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var in assignRequest

		if err := ctx.BodyParser(&in); err != nil {
			return badRequest(ctx, "datos inválidos")
		}

		inv, err := app.dbm.Assign(in.ID, in.PersonID, in.Role, in.Comment, in.Force)

		return assignResult(app, ctx, inv, err)
	}
}

func getReassignHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var in assignRequest

		if err := ctx.BodyParser(&in); err != nil {
			return badRequest(ctx, "datos inválidos")
		}

		inv, err := app.dbm.Reassign(in.ID, in.PersonID, in.Role, in.Comment, in.Force)

		return assignResult(app, ctx, inv, err)
	}
}

// assignResult renders the shared outcome of assign and reassign: a conflict
// verdict becomes a 409 the client can re-submit with force.
func assignResult(app *App, ctx *fiber.Ctx, inv *model.Invitation, err error) error {
	if err != nil {
		var ce *conflict.Error

		switch {
		case errors.As(err, &ce):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"ok":        false,
				"conflict":  true,
				"level":     ce.Verdict.Level,
				"conflicts": ce.Verdict.Conflicts,
			})
		case errors.Is(err, database.ErrNotFound):
			return notFound(ctx, err.Error())
		default:
			return serverError(ctx, err)
		}
	}

	app.logger.Info("assignment saved",
		slog.Any("id", inv.ID), slog.String("status", inv.Status))

	return ctx.JSON(fiber.Map{"ok": true, "invitation": inv.DTO()})
}

func getCancelHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var in struct {
			ID      uint   `json:"id"`
			Comment string `json:"comentario"`
		}

		if err := ctx.BodyParser(&in); err != nil {
			return badRequest(ctx, "datos inválidos")
		}

		inv, err := app.dbm.Cancel(in.ID, in.Comment)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound(ctx, err.Error())
			}

			return serverError(ctx, err)
		}

		return ctx.JSON(fiber.Map{"ok": true, "invitation": inv.DTO()})
	}
}

func getStatusHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var in struct {
			ID      uint   `json:"id"`
			Status  string `json:"estatus"`
			Comment string `json:"comentario"`
		}

		if err := ctx.BodyParser(&in); err != nil {
			return badRequest(ctx, "datos inválidos")
		}

		inv, err := app.dbm.SetStatus(in.ID, in.Status, in.Comment)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrBadStatus):
				return badRequest(ctx, err.Error())
			case errors.Is(err, database.ErrNotFound):
				return notFound(ctx, err.Error())
			default:
				return serverError(ctx, err)
			}
		}

		return ctx.JSON(fiber.Map{"ok": true, "invitation": inv.DTO()})
	}
}

func getCheckConflictHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var in struct {
			PersonID  uint   `json:"persona_id"`
			Date      string `json:"fecha"`
			Time      string `json:"hora"`
			ExcludeID uint   `json:"exclude_id"`
		}

		if err := ctx.BodyParser(&in); err != nil {
			return badRequest(ctx, "datos inválidos")
		}

		d := model.ParseDateFlexible(in.Date)
		t := model.ParseClockFlexible(in.Time)

		if in.PersonID == 0 || d == nil || t == nil {
			// missing data means nothing to rate
			return ctx.JSON(&conflict.Verdict{Level: model.LevelNone})
		}

		return ctx.JSON(app.dbm.CheckConflict(in.PersonID, *d, *t, in.ExcludeID))
	}
}
