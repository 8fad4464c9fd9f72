package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atiapp/inviteboard/internal/assign"
	"github.com/atiapp/inviteboard/internal/conflict"
	"github.com/atiapp/inviteboard/internal/model"
)

func assignReq(substitute bool) assign.Request {
	return assign.Request{InvitationID: 1, PersonID: 5, Substitute: substitute}
}

func newTestAPI(handler http.Handler) (*API, *httptest.Server) {
	srv := httptest.NewServer(handler)

	return NewAPI(srv.URL, slog.Default()), srv
}

func TestReadsAreCacheBusted(t *testing.T) {
	var gotTS string

	api, srv := newTestAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTS = r.URL.Query().Get("ts")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	_, err := api.Invitations(context.Background(), Filter{})

	require.NoError(t, err)
	assert.NotEmpty(t, gotTS)
}

func TestInvitationsFilterArgs(t *testing.T) {
	var (
		gotPath string
		got     map[string]string
	)

	api, srv := newTestAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		got = map[string]string{
			"status":    r.URL.Query().Get("status"),
			"date_from": r.URL.Query().Get("date_from"),
			"date_to":   r.URL.Query().Get("date_to"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	_, err := api.Invitations(context.Background(), Filter{
		Status: model.StatusConfirmed,
		From:   model.ParseDateFlexible("2026-09-01"),
		To:     model.ParseDateFlexible("2026-09-30"),
	})

	require.NoError(t, err)
	assert.Equal(t, "/api/invitations", gotPath)
	assert.Equal(t, "Confirmado", got["status"])
	assert.Equal(t, "2026-09-01", got["date_from"])
	assert.Equal(t, "2026-09-30", got["date_to"])
}

func TestAssignConflictDecoding(t *testing.T) {
	api, srv := newTestAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"ok":false,"conflict":true,"level":"hard",` +
			`"conflicts":[{"ID":9,"Evento":"Sesión","FechaFmt":"10/09/26","HoraFmt":"10:00","Estatus":"Confirmado"}]}`))
	}))
	defer srv.Close()

	err := api.Assign(context.Background(), 1, 5, "", "", false)

	require.Error(t, err)

	var ce *conflict.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, model.LevelHard, ce.Verdict.Level)
	require.Len(t, ce.Verdict.Conflicts, 1)
	assert.Equal(t, uint(9), ce.Verdict.Conflicts[0].ID)
	assert.Equal(t, "Sesión", ce.Verdict.Conflicts[0].Event)
}

func TestCatalogStaysValidOnError(t *testing.T) {
	var gotPath string

	fail := false

	api, srv := newTestAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"error":"db down"}`))

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"ID":1,"Nombre":"Laura Díaz","Cargo":"Secretaria"}]`))
	}))
	defer srv.Close()

	require.NoError(t, api.ReloadCatalog(context.Background()))
	assert.Equal(t, "/api/catalog", gotPath)
	require.Equal(t, 1, api.Catalog().Len())

	fail = true

	err := api.ReloadCatalog(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	// previous snapshot still answers lookups
	assert.Equal(t, 1, api.Catalog().Len())

	p := api.Lookup(1)
	require.NotNil(t, p)
	assert.Equal(t, "Laura Díaz", p.Name)
}

func TestServerErrorMessage(t *testing.T) {
	api, srv := newTestAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error":"invitación no encontrada"}`))
	}))
	defer srv.Close()

	err := api.Cancel(context.Background(), 99, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invitación no encontrada")
}

func TestCommitRoutesSubstitution(t *testing.T) {
	var paths []string

	api, srv := newTestAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	ctx := context.Background()

	require.NoError(t, api.Commit(ctx, assignReq(false), false))
	require.NoError(t, api.Commit(ctx, assignReq(true), true))

	require.Len(t, paths, 2)
	assert.Equal(t, "/api/assign", paths[0])
	assert.Equal(t, "/api/reassign", paths[1])
}

func TestCheckConflict(t *testing.T) {
	api, srv := newTestAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"level":"tight1h","conflicts":[{"ID":2}]}`))
	}))
	defer srv.Close()

	v, err := api.CheckConflict(context.Background(), 5, "2026-09-10", "10:30", 0)

	require.NoError(t, err)
	assert.Equal(t, model.LevelTight1h, v.Level)
	require.Len(t, v.Conflicts, 1)
}
