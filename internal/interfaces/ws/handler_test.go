package ws_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/event"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/memory"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/realtime"
	"github.com/jhoicas/sucursales-api/internal/interfaces/ws"
	"github.com/jhoicas/sucursales-api/pkg/config"
	"github.com/jhoicas/sucursales-api/pkg/jwt"
)

// ─── Helpers de test ───────────────────────────────────────────────────────────

const secret = "secreto-ws"

func newServer(t *testing.T) (*httptest.Server, *realtime.Hub) {
	t.Helper()
	store := memory.NewStore()
	store.AddBranch(&entity.Branch{ID: "b1", Code: "CEN", Name: "Centro", Active: true})
	store.AddBranch(&entity.Branch{ID: "b2", Code: "NOR", Name: "Norte", Active: true})

	hub := realtime.NewHub(zerolog.Nop())
	h := ws.NewHandler(hub, jwt.NewVerifier(secret, ""), store.Branches(),
		config.RealtimeConfig{SendBuffer: 8, PingInterval: time.Minute}, zerolog.Nop())
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, query string, header http.Header) (*websocket.Conn, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	cfg, err := websocket.NewConfig(wsURL, srv.URL)
	require.NoError(t, err)
	cfg.Header = header
	conn, err := websocket.DialConfig(cfg)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, err
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg string
	require.NoError(t, websocket.Message.Receive(conn, &msg))
	require.NoError(t, json.Unmarshal([]byte(msg), v))
}

func waitRoom(t *testing.T, hub *realtime.Hub, room string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.RoomSize(room) == n }, 2*time.Second, 10*time.Millisecond)
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestWS_AdminSeUneATodasLasSucursales(t *testing.T) {
	srv, hub := newServer(t)
	tok, err := jwt.Generate(secret, jwt.Identity{UserID: "root", Role: entity.RoleMasterAdmin}, "", 5)
	require.NoError(t, err)

	conn, err := dial(t, srv, "?token="+tok, nil)
	require.NoError(t, err)

	var welcome ws.Welcome
	readJSON(t, conn, &welcome)
	assert.Equal(t, "connected", welcome.Event)
	assert.Equal(t, auth.KindToken, welcome.Data.Kind)
	assert.ElementsMatch(t, []string{"branch:b1", "branch:b2", realtime.AdminRoom}, welcome.Data.Rooms)

	hub.EmitToBranch("b2", event.NewInventoryEvent(event.InventoryStockChanged, map[string]any{"id": "i1"}, "b2", time.Now()))

	var frame event.Frame
	readJSON(t, conn, &frame)
	assert.Equal(t, event.InventoryUpdated, frame.Event)
	assert.Equal(t, "b2", frame.Data.BranchID)
}

func TestWS_CabecerasSoloSuSucursal(t *testing.T) {
	srv, hub := newServer(t)
	h := http.Header{}
	h.Set("x-username", "Ana")
	h.Set("x-branch-id", "b1")

	conn, err := dial(t, srv, "", h)
	require.NoError(t, err)

	var welcome ws.Welcome
	readJSON(t, conn, &welcome)
	assert.Equal(t, auth.KindHeader, welcome.Data.Kind)
	assert.Equal(t, []string{"branch:b1"}, welcome.Data.Rooms)
	waitRoom(t, hub, "branch:b1", 1)

	hub.EmitToBranch("b2", event.NewSaleEvent(event.SaleCreated, nil, "b2", time.Now()))
	hub.EmitToBranch("b1", event.NewSaleEvent(event.SaleCreated, nil, "b1", time.Now()))

	var frame event.Frame
	readJSON(t, conn, &frame)
	assert.Equal(t, "b1", frame.Data.BranchID, "el evento de otra sucursal no llega")
}

func TestWS_BearerEnCabecera(t *testing.T) {
	srv, _ := newServer(t)
	tok, err := jwt.Generate(secret, jwt.Identity{UserID: "u1", Role: entity.RoleSeller, BranchIDs: []string{"b2"}}, "", 5)
	require.NoError(t, err)
	h := http.Header{}
	h.Set("Authorization", "Bearer "+tok)

	conn, err := dial(t, srv, "", h)
	require.NoError(t, err)

	var welcome ws.Welcome
	readJSON(t, conn, &welcome)
	assert.Equal(t, []string{"branch:b2"}, welcome.Data.Rooms)
}

func TestWS_AnonimoSinSalas(t *testing.T) {
	srv, _ := newServer(t)
	conn, err := dial(t, srv, "", nil)
	require.NoError(t, err)

	var welcome ws.Welcome
	readJSON(t, conn, &welcome)
	assert.Equal(t, auth.KindAnonymous, welcome.Data.Kind)
	assert.Empty(t, welcome.Data.Rooms)
}

func TestWS_TokenInvalidoRechazado(t *testing.T) {
	srv, _ := newServer(t)
	_, err := dial(t, srv, "?token=basura", nil)
	assert.Error(t, err)
}

func TestWS_DesconexionLiberaSala(t *testing.T) {
	srv, hub := newServer(t)
	h := http.Header{}
	h.Set("x-username", "ana")
	h.Set("x-branch-id", "b1")

	conn, err := dial(t, srv, "", h)
	require.NoError(t, err)
	var welcome ws.Welcome
	readJSON(t, conn, &welcome)
	waitRoom(t, hub, "branch:b1", 1)

	require.NoError(t, conn.Close())
	waitRoom(t, hub, "branch:b1", 0)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ws.BearerToken("Bearer abc"))
	assert.Equal(t, "abc", ws.BearerToken("bearer  abc "))
	assert.Empty(t, ws.BearerToken("Basic abc"))
	assert.Empty(t, ws.BearerToken(""))
}
