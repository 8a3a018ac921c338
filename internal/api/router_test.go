package api_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/moonshade/internal/api"
	"github.com/meur/moonshade/internal/broadcast"
	"github.com/meur/moonshade/internal/events"
	"github.com/meur/moonshade/internal/models"
	"github.com/meur/moonshade/internal/storage"
)

type downBackend struct{}

func (downBackend) Ping(ctx context.Context) error { return errors.New("connection refused") }

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *events.Store
}

func newTestServer(t *testing.T, opts ...events.Option) *testServer {
	t.Helper()
	mem := storage.NewMemory()
	opts = append([]events.Option{events.WithShares(mem)}, opts...)
	store := events.New(mem, opts...)
	require.NoError(t, store.Open(context.Background(), ""))

	return &testServer{
		t:       t,
		handler: api.New(store, mem, broadcast.NewHub(), nil),
		store:   store,
	}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	down := api.New(ts.store, downBackend{}, nil, nil)
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEventLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.EventSummary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, events.SeedEventName, list[0].Name)
	assert.True(t, list[0].Current)

	rec = ts.do(http.MethodPost, "/api/events", map[string]string{"name": "Finals"})
	require.Equal(t, http.StatusCreated, rec.Code)
	finals := decode[models.Event](t, rec)
	assert.Equal(t, "Finals", finals.Name)
	assert.Len(t, finals.Board.Tiles, 54)

	rec = ts.do(http.MethodPost, "/api/events", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Event 3", decode[models.Event](t, rec).Name)

	rec = ts.do(http.MethodPatch, "/api/events/"+finals.ID, map[string]string{"name": "Grand Finals"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Grand Finals", decode[models.Event](t, rec).Name)

	rec = ts.do(http.MethodPost, "/api/events/"+finals.ID+"/switch", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, finals.ID, decode[models.Event](t, rec).ID)

	rec = ts.do(http.MethodPost, "/api/events/"+finals.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	dup := decode[models.Event](t, rec)
	assert.Equal(t, "Grand Finals (copy)", dup.Name)
	assert.NotEqual(t, finals.ID, dup.ID)

	rec = ts.do(http.MethodDelete, "/api/events/"+finals.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(http.MethodDelete, "/api/events/"+finals.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "deleting twice is fine")

	rec = ts.do(http.MethodGet, "/api/events/"+finals.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/api/events/missing/switch", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Len(t, decode[[]models.EventSummary](t, ts.do(http.MethodGet, "/api/events", nil)), 3)
}

func TestBoardAndTeams(t *testing.T) {
	ts := newTestServer(t, events.WithRoller(func() int { return 4 }))

	rec := ts.do(http.MethodPut, "/api/current/board/size", map[string]int{"rows": 4, "cols": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.Board](t, rec).Tiles, 16)

	rec = ts.do(http.MethodPatch, "/api/current/board/tiles/5", map[string]any{"emoji": "🐉", "blocked": true})
	require.Equal(t, http.StatusOK, rec.Code)
	tile := decode[models.Tile](t, rec)
	assert.Equal(t, "🐉", tile.Emoji)
	assert.Equal(t, "Tile 6", tile.Label)

	rec = ts.do(http.MethodPatch, "/api/current/board/tiles/16", map[string]any{"emoji": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(http.MethodPatch, "/api/current/board/tiles/abc", map[string]any{"emoji": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/current/board/stripe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StripeColors[0], decode[models.Event](t, rec).Board.Tiles[0].Color)

	rec = ts.do(http.MethodPost, "/api/current/teams", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	team := decode[models.Team](t, rec)
	assert.Equal(t, "Team 1", team.Name)
	teamPath := "/api/current/teams/" + team.ID

	rec = ts.do(http.MethodPatch, teamPath, map[string]any{"name": "Owls", "members": "Ann, Ben"})
	require.Equal(t, http.StatusOK, rec.Code)
	team = decode[models.Team](t, rec)
	assert.Equal(t, "Owls", team.Name)
	assert.Equal(t, []string{"Ann", "Ben"}, team.Members)

	rec = ts.do(http.MethodPost, teamPath+"/move", map[string]int{"steps": -1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15, decode[models.Team](t, rec).Position)

	rec = ts.do(http.MethodPost, teamPath+"/roll", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roll := decode[struct {
		Roll int         `json:"roll"`
		Team models.Team `json:"team"`
	}](t, rec)
	assert.Equal(t, 4, roll.Roll)
	assert.Equal(t, 3, roll.Team.Position)

	rec = ts.do(http.MethodPost, teamPath+"/drop", map[string]int{"index": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[models.Team](t, rec).Position)

	rec = ts.do(http.MethodPost, teamPath+"/drop", map[string]int{"index": 99})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/current/selection/arrow", map[string]string{"direction": "ArrowDown"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, decode[models.Team](t, rec).Position)

	rec = ts.do(http.MethodPost, "/api/current/selection/arrow", map[string]string{"direction": "diagonal"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/current/selection/move", map[string]int{"steps": 8})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[models.Team](t, rec).Position)

	rec = ts.do(http.MethodDelete, "/api/current/selection", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[models.Event](t, rec).SelectedTeamID)

	rec = ts.do(http.MethodPost, "/api/current/selection/move", map[string]int{"steps": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, teamPath+"/select", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, team.ID, *decode[models.Event](t, rec).SelectedTeamID)

	rec = ts.do(http.MethodPost, "/api/current/teams/missing/move", map[string]int{"steps": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodDelete, teamPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(http.MethodDelete, teamPath, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNoCurrentEvent(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/document", nil).Code)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/current", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/current/teams", nil).Code)
	assert.Empty(t, decode[[]models.EventSummary](t, ts.do(http.MethodGet, "/api/events", nil)))
}

func TestDocumentImportExport(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/document", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), api.ExportFileName)
	exported := rec.Body.String()
	assert.Contains(t, exported, "\n  \"events\"")

	before := ts.store.Export()
	for _, body := range []string{"", "not json", "[]", `{"events":`} {
		rec := ts.do(http.MethodPut, "/api/document", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Invalid JSON", decode[map[string]string](t, rec)["error"])
	}
	assert.Equal(t, before, ts.store.Export(), "failed imports change nothing")

	doc := models.NewDocument()
	ev := models.NewEvent("Imported", time.UnixMilli(1714560000000))
	doc.Events[ev.ID] = ev
	rec = ts.do(http.MethodPut, "/api/document", doc)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Document](t, rec)
	require.NotNil(t, got.EventID)
	assert.Equal(t, ev.ID, *got.EventID, "selection falls back to the first event")
	assert.Len(t, got.Events, 1)

	rec = ts.do(http.MethodPut, "/api/document", exported)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before, ts.store.Export(), "export then import restores state")
}

func TestImportDocument_TooLarge(t *testing.T) {
	ts := newTestServer(t)
	before := ts.store.Export()

	// Valid JSON up to the limit, so truncation would have parsed as garbage.
	prefix, suffix := `{"events":{},"notes":"`, `"}`
	padding := strings.Repeat("x", api.MaxDocumentSize-len(prefix)-len(suffix)+1)
	rec := ts.do(http.MethodPut, "/api/document", prefix+padding+suffix)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Document too large", decode[map[string]string](t, rec)["error"])
	assert.Equal(t, before, ts.store.Export())
}

func TestShareEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/share-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	rec = ts.do(http.MethodPost, "/api/share-token/decode", map[string]string{"token": "#" + token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ts.store.Export(), ptr(decode[models.Document](t, rec)))

	rec = ts.do(http.MethodPost, "/api/share-token/decode", map[string]string{"token": "!!!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/share", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	link := decode[map[string]string](t, rec)
	assert.Len(t, link["code"], 8)
	assert.Equal(t, token, link["token"])

	rec = ts.do(http.MethodGet, "/api/s/"+link["code"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(http.MethodGet, "/api/s/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	other := newTestServer(t)
	rec = other.do(http.MethodPost, "/api/session", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ts.store.Export(), other.store.Export(), "session opened from token")
}

func TestEventBundle(t *testing.T) {
	ts := newTestServer(t)
	cur, err := ts.store.Current()
	require.NoError(t, err)

	rec := ts.do(http.MethodGet, "/api/events/"+cur.ID+"/bundle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tiletrials-bundle.zip")

	body := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"board.json", "icons/"}, names)

	rec = ts.do(http.MethodGet, "/api/events/"+cur.ID+"/bridge", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	guide := decode[map[string]any](t, rec)
	assert.True(t, strings.Contains(guide["instructions"].(string), cur.ID))

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/events/missing/bundle", nil).Code)
}

func ptr[T any](v T) *T { return &v }

func TestShareLinkRateLimit(t *testing.T) {
	ts := newTestServer(t)

	var limited int
	for i := 0; i < 10; i++ {
		rec := ts.do(http.MethodPost, "/api/share", nil)
		if rec.Code == http.StatusTooManyRequests {
			limited++
			continue
		}
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Positive(t, limited)

	rec := ts.do(http.MethodGet, "/api/share-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "other routes are not limited")
}
