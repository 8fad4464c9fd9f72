package main

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/atiapp/inviteboard/internal/attach"
	"github.com/atiapp/inviteboard/internal/database"
	"github.com/atiapp/inviteboard/internal/model"
)

var errBadExtension = errors.New("tipo de archivo no permitido")

func getInvitationsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		q := app.dbm.InvitationQuery().Full()

		if s := ctx.Query("status"); s != "" {
			if !model.ValidStatus(s) {
				return badRequest(ctx, "estatus inválido")
			}

			q = q.Status(s)
		}

		if d := model.ParseDateFlexible(ctx.Query("date_from")); d != nil {
			q = q.From(d)
		}

		if d := model.ParseDateFlexible(ctx.Query("date_to")); d != nil {
			q = q.To(d)
		}

		invs := q.Get()

		dtos := make([]*model.InvitationDTO, len(invs))
		for i, inv := range invs {
			dtos[i] = inv.DTO()
		}

		return ctx.JSON(dtos)
	}
}

func getInvitationHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := ctx.ParamsInt("id")
		if err != nil || id <= 0 {
			return badRequest(ctx, "id inválido")
		}

		inv := app.dbm.InvitationQuery().Id(uint(id)).Full().One()
		if inv == nil {
			return notFound(ctx, "invitación no encontrada")
		}

		return ctx.JSON(inv.DTO())
	}
}

func getInvitationCreateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		inv := &model.Invitation{
			Status:    model.StatusPending,
			UpdatedAt: time.Now(),
			UpdatedBy: database.ModifiedBy,
		}

		applyInvitationForm(ctx, inv)

		if inv.Event == "" {
			return badRequest(ctx, "falta evento")
		}

		if title := formValue(ctx, "convoca_cargo"); title != "" && !app.refs.HasTitle(title) {
			return badRequest(ctx, "convoca cargo desconocido")
		}

		if err := saveAttachment(app, ctx, inv); err != nil {
			return badRequest(ctx, err.Error())
		}

		if err := app.dbm.Create(inv); err != nil {
			return serverError(ctx, err)
		}

		app.logger.Info("invitation created", slog.Any("id", inv.ID))

		return ctx.JSON(fiber.Map{"ok": true, "id": inv.ID})
	}
}

func getInvitationUpdateHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := strconv.ParseUint(formValue(ctx, "id"), 10, 32)
		if err != nil || id == 0 {
			return badRequest(ctx, "id inválido")
		}

		inv := app.dbm.InvitationQuery().Id(uint(id)).One()
		if inv == nil {
			return notFound(ctx, "invitación no encontrada")
		}

		applyInvitationForm(ctx, inv)

		if formValue(ctx, "eliminar_archivo") != "" && inv.FileURL != "" {
			app.files.Remove(inv.FileURL)
			inv.FileURL = ""
			inv.FileName = ""
			inv.FileMime = ""
			inv.FileSize = 0
			inv.FileTS = nil
		}

		if err := saveAttachment(app, ctx, inv); err != nil {
			return badRequest(ctx, err.Error())
		}

		inv.UpdatedAt = time.Now()
		inv.UpdatedBy = database.ModifiedBy

		if err := app.dbm.Save(inv); err != nil {
			return serverError(ctx, err)
		}

		return ctx.JSON(fiber.Map{"ok": true})
	}
}

func getInvitationDeleteHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var in struct {
			ID uint `json:"id"`
		}

		if err := ctx.BodyParser(&in); err != nil {
			return badRequest(ctx, "datos inválidos")
		}

		inv := app.dbm.InvitationQuery().Id(in.ID).One()
		if inv == nil {
			return notFound(ctx, "invitación no encontrada")
		}

		if inv.FileURL != "" {
			app.files.Remove(inv.FileURL)
		}

		if err := app.dbm.InvitationQuery().Id(in.ID).Delete(); err != nil {
			return serverError(ctx, err)
		}

		return ctx.JSON(fiber.Map{"ok": true})
	}
}

// applyInvitationForm copies the posted fields onto the invitation. Absent
// fields keep their stored value.
func applyInvitationForm(ctx *fiber.Ctx, inv *model.Invitation) {
	set := func(key string, dst *string) {
		if v := formValue(ctx, key); v != "" {
			*dst = v
		}
	}

	set("evento", &inv.Event)
	set("convoca_cargo", &inv.OrganizerTitle)
	set("convoca", &inv.Organizer)
	set("partido_politico", &inv.Party)
	set("municipio", &inv.Municipality)
	set("lugar", &inv.Venue)
	set("observaciones", &inv.Notes)

	if d := model.ParseDateFlexible(formValue(ctx, "fecha")); d != nil {
		inv.Date = d
	}

	if t := model.ParseClockFlexible(formValue(ctx, "hora")); t != nil {
		inv.Time = t
	}
}

func formValue(ctx *fiber.Ctx, key string) string {
	return strings.TrimSpace(ctx.FormValue(key))
}

func saveAttachment(app *App, ctx *fiber.Ctx, inv *model.Invitation) error {
	fh, err := ctx.FormFile("archivo")
	if err != nil || fh == nil {
		return nil
	}

	if !attach.Allowed(fh.Filename) {
		return errBadExtension
	}

	src, err := fh.Open()
	if err != nil {
		return err
	}

	defer src.Close()

	info, err := app.files.Save(fh.Filename, src)
	if err != nil {
		return err
	}

	if inv.FileURL != "" {
		app.files.Remove(inv.FileURL)
	}

	inv.FileURL = info.URL
	inv.FileName = info.Name
	inv.FileMime = info.Mime
	inv.FileSize = info.Size
	inv.FileTS = &info.TS

	return nil
}
