// Package client is the typed HTTP client for the invitation backend. It
// keeps a local catalog cache that is swapped atomically on reload and
// translates 409 answers back into conflict errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/atiapp/inviteboard/internal/assign"
	"github.com/atiapp/inviteboard/internal/conflict"
	"github.com/atiapp/inviteboard/internal/model"
	"github.com/atiapp/inviteboard/internal/repository"
)

const defaultTimeout = time.Second * 10

// Filter narrows an invitation listing.
type Filter struct {
	Status string
	From   *model.DateOnly
	To     *model.DateOnly
}

// Attachment is an optional file sent with an invitation create or update.
type Attachment struct {
	Name   string
	Reader io.Reader
}

// InvitationInput carries invitation fields as form values. Empty strings on
// update leave the stored value untouched.
type InvitationInput struct {
	Event          string
	OrganizerTitle string
	Organizer      string
	Party          string
	Date           string
	Time           string
	Municipality   string
	Venue          string
	Notes          string
	RemoveFile     bool
}

type API struct {
	logger  *slog.Logger
	base    string
	client  *http.Client
	catalog *repository.CatalogMemoryRepo
}

func NewAPI(base string, logger *slog.Logger) *API {
	return &API{
		logger: logger.With("logger", "api"),
		base:   base,
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: &http.Transport{ResponseHeaderTimeout: defaultTimeout},
		},
		catalog: repository.NewCatalogMemoryRepo(),
	}
}

func (a *API) request(path string) *Request {
	return NewRequest(a.client, a.base+path).Logger(a.logger)
}

// get builds a cache-busted read. The ts argument defeats intermediary
// caches the same way the dashboard does.
func (a *API) get(path string) *Request {
	return a.request(path).
		Arg("ts", strconv.FormatInt(time.Now().UnixMilli(), 10)).
		Header("Cache-Control", "no-store")
}

// ReloadCatalog refreshes the local person cache. On any error the previous
// cache stays valid.
func (a *API) ReloadCatalog(ctx context.Context) error {
	var dtos []*model.PersonDTO

	if err := a.get("/api/catalog").GetJSON(ctx, &dtos); err != nil {
		return err
	}

	persons := make([]*model.Person, len(dtos))
	for i, d := range dtos {
		persons[i] = &model.Person{
			ID:     d.ID,
			Name:   d.Name,
			Title:  d.Title,
			Phone:  d.Phone,
			Email:  d.Email,
			Unit:   d.Unit,
			Active: true,
		}
	}

	a.catalog.Replace(persons)

	return nil
}

func (a *API) Catalog() *repository.CatalogMemoryRepo {
	return a.catalog
}

func (a *API) Lookup(id uint) *model.Person {
	return a.catalog.Lookup(id)
}

func (a *API) Invitations(ctx context.Context, f Filter) ([]*model.InvitationDTO, error) {
	req := a.get("/api/invitations")

	if f.Status != "" {
		req.Arg("status", f.Status)
	}

	if f.From != nil {
		req.Arg("date_from", f.From.String())
	}

	if f.To != nil {
		req.Arg("date_to", f.To.String())
	}

	var dtos []*model.InvitationDTO

	if err := req.GetJSON(ctx, &dtos); err != nil {
		return nil, err
	}

	return dtos, nil
}

func (a *API) Invitation(ctx context.Context, id uint) (*model.InvitationDTO, error) {
	var dto model.InvitationDTO

	if err := a.get("/api/invitation/" + strconv.FormatUint(uint64(id), 10)).GetJSON(ctx, &dto); err != nil {
		return nil, err
	}

	return &dto, nil
}

// CreateInvitation posts the form, streaming the attachment when present.
func (a *API) CreateInvitation(ctx context.Context, in InvitationInput, att *Attachment) (uint, error) {
	body, contentType, err := invitationForm(0, in, att)
	if err != nil {
		return 0, err
	}

	var res struct {
		OK bool `json:"ok"`
		ID uint `json:"id"`
	}

	if err := a.request("/api/invitation/create").Post().
		Body(body, contentType).GetJSON(ctx, &res); err != nil {
		return 0, err
	}

	return res.ID, nil
}

func (a *API) UpdateInvitation(ctx context.Context, id uint, in InvitationInput, att *Attachment) error {
	body, contentType, err := invitationForm(id, in, att)
	if err != nil {
		return err
	}

	return a.request("/api/invitation/update").Post().
		Body(body, contentType).GetJSON(ctx, &okBody{})
}

func (a *API) DeleteInvitation(ctx context.Context, id uint) error {
	return a.postJSON(ctx, "/api/invitation/delete", map[string]any{"id": id})
}

// Assign confirms an invitation for a person. A 409 answer comes back as a
// *conflict.Error carrying the server verdict.
func (a *API) Assign(ctx context.Context, id, personID uint, role, comment string, force bool) error {
	return a.mutateAssignment(ctx, "/api/assign", id, personID, role, comment, force)
}

// Reassign swaps the assignee, marking the invitation as substituted.
func (a *API) Reassign(ctx context.Context, id, personID uint, role, comment string, force bool) error {
	return a.mutateAssignment(ctx, "/api/reassign", id, personID, role, comment, force)
}

func (a *API) mutateAssignment(ctx context.Context, path string, id, personID uint, role, comment string, force bool) error {
	payload := map[string]any{
		"id":         id,
		"persona_id": personID,
		"rol":        role,
		"comentario": comment,
		"force":      force,
	}

	res, err := a.request(path).Post().JSONBody(payload).Do(ctx)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode == http.StatusConflict {
		return decodeConflict(res.Body)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res)
	}

	return nil
}

func (a *API) Cancel(ctx context.Context, id uint, comment string) error {
	return a.postJSON(ctx, "/api/cancel", map[string]any{"id": id, "comentario": comment})
}

func (a *API) SetStatus(ctx context.Context, id uint, status, comment string) error {
	return a.postJSON(ctx, "/api/status", map[string]any{"id": id, "estatus": status, "comentario": comment})
}

func (a *API) CreatePerson(ctx context.Context, in *model.PersonInput) (uint, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	var res struct {
		OK bool `json:"ok"`
		ID uint `json:"id"`
	}

	if err := a.request("/api/person/create").Post().JSONBody(in).GetJSON(ctx, &res); err != nil {
		return 0, err
	}

	return res.ID, nil
}

func (a *API) UpdatePerson(ctx context.Context, in *model.PersonInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	return a.postJSON(ctx, "/api/person/update", in)
}

func (a *API) DeletePerson(ctx context.Context, id uint) error {
	return a.postJSON(ctx, "/api/person/delete", map[string]any{"id": id})
}

// CheckConflict asks the server to rate a hypothetical assignment.
func (a *API) CheckConflict(ctx context.Context, personID uint, date, clock string, excludeID uint) (*conflict.Verdict, error) {
	payload := map[string]any{
		"persona_id": personID,
		"fecha":      date,
		"hora":       clock,
		"exclude_id": excludeID,
	}

	var v conflict.Verdict

	if err := a.request("/api/check-conflict").Post().JSONBody(payload).GetJSON(ctx, &v); err != nil {
		return nil, err
	}

	return &v, nil
}

func (a *API) Stats(ctx context.Context, from, to *model.DateOnly) (map[string]int, error) {
	req := a.get("/api/stats")

	if from != nil {
		req.Arg("date_from", from.String())
	}

	if to != nil {
		req.Arg("date_to", to.String())
	}

	var stats map[string]int

	if err := req.GetJSON(ctx, &stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// Evaluate implements assign.Evaluator: it rates the attempt against a fresh
// listing fetched from the server.
func (a *API) Evaluate(ctx context.Context, req assign.Request) (*conflict.Verdict, error) {
	dto, err := a.Invitation(ctx, req.InvitationID)
	if err != nil {
		return nil, err
	}

	dtos, err := a.Invitations(ctx, Filter{})
	if err != nil {
		return nil, err
	}

	snapshot := make([]*model.Invitation, len(dtos))
	for i, d := range dtos {
		snapshot[i] = d.ToInvitation()
	}

	return conflict.Evaluate(conflict.TargetOf(dto.ToInvitation(), req.PersonID), snapshot), nil
}

// Commit implements assign.Committer.
func (a *API) Commit(ctx context.Context, req assign.Request, force bool) error {
	if req.Substitute {
		return a.Reassign(ctx, req.InvitationID, req.PersonID, req.Role, req.Comment, force)
	}

	return a.Assign(ctx, req.InvitationID, req.PersonID, req.Role, req.Comment, force)
}

type okBody struct {
	OK bool `json:"ok"`
}

func (a *API) postJSON(ctx context.Context, path string, payload any) error {
	return a.request(path).Post().JSONBody(payload).GetJSON(ctx, &okBody{})
}

func decodeConflict(r io.Reader) error {
	var body struct {
		Conflict  bool                 `json:"conflict"`
		Level     model.ConflictLevel  `json:"level"`
		Conflicts []model.ConflictItem `json:"conflicts"`
	}

	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return fmt.Errorf("bad conflict body: %w", err)
	}

	return &conflict.Error{Verdict: conflict.Verdict{Level: body.Level, Conflicts: body.Conflicts}}
}

func invitationForm(id uint, in InvitationInput, att *Attachment) (io.Reader, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"evento":           in.Event,
		"convoca_cargo":    in.OrganizerTitle,
		"convoca":          in.Organizer,
		"partido_politico": in.Party,
		"fecha":            in.Date,
		"hora":             in.Time,
		"municipio":        in.Municipality,
		"lugar":            in.Venue,
		"observaciones":    in.Notes,
	}

	if id > 0 {
		fields["id"] = strconv.FormatUint(uint64(id), 10)
	}

	if in.RemoveFile {
		fields["eliminar_archivo"] = "1"
	}

	for k, v := range fields {
		if v == "" {
			continue
		}

		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if att != nil {
		fw, err := w.CreateFormFile("archivo", att.Name)
		if err != nil {
			return nil, "", err
		}

		if _, err := io.Copy(fw, att.Reader); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
