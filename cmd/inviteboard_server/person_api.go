package main

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/atiapp/inviteboard/internal/database"
	"github.com/atiapp/inviteboard/internal/model"
)

func getCatalogHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		persons := app.dbm.PersonQuery().Get()

		dtos := make([]*model.PersonDTO, len(persons))
		for i, p := range persons {
			dtos[i] = p.DTO()
		}

		return ctx.JSON(dtos)
	}
}

func getPersonCreateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		in := new(model.PersonInput)

		if err := ctx.BodyParser(in); err != nil {
			return badRequest(ctx, "datos inválidos")
		}

		if err := in.Validate(); err != nil {
			return validationError(ctx, err)
		}

		p := in.ToPerson()
		p.ID = 0

		if err := app.dbm.Create(p); err != nil {
			return serverError(ctx, err)
		}

		app.logger.Info("person created", slog.Any("id", p.ID))

		return ctx.JSON(fiber.Map{"ok": true, "id": p.ID})
	}
}

func getPersonUpdateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		in := new(model.PersonInput)

		if err := ctx.BodyParser(in); err != nil {
			return badRequest(ctx, "datos inválidos")
		}

		if err := in.Validate(); err != nil {
			return validationError(ctx, err)
		}

		p := app.dbm.PersonQuery().Id(in.ID).One()
		if p == nil {
			return notFound(ctx, "persona no encontrada")
		}

		p.Name = in.Name
		p.Title = in.Title
		p.Phone = in.Phone
		p.Email = in.Email
		p.Unit = in.Unit

		if err := app.dbm.Save(p); err != nil {
			return serverError(ctx, err)
		}

		return ctx.JSON(fiber.Map{"ok": true})
	}
}

func getPersonDeleteHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var in struct {
			ID uint `json:"id"`
		}

		if err := ctx.BodyParser(&in); err != nil {
			return badRequest(ctx, "datos inválidos")
		}

		n, err := app.dbm.DeletePerson(in.ID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound(ctx, "persona no encontrada")
			}

			return serverError(ctx, err)
		}

		app.logger.Info("person deleted", slog.Any("id", in.ID), slog.Int("unassigned", n))

		return ctx.JSON(fiber.Map{"ok": true, "desasignadas": n})
	}
}

func badRequest(ctx *fiber.Ctx, msg string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": msg})
}

func notFound(ctx *fiber.Ctx, msg string) error {
	return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"ok": false, "error": msg})
}

func serverError(ctx *fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": err.Error()})
}

func validationError(ctx *fiber.Ctx, err error) error {
	var verr validator.ValidationErrors

	msg := "datos inválidos"

	if errors.As(err, &verr) && len(verr) > 0 {
		msg = "campo inválido: " + verr[0].Field()
	}

	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": msg})
}
