// Package ws expone el canal en tiempo real (/ws) sobre golang.org/x/net/websocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"

	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/realtime"
	"github.com/jhoicas/sucursales-api/pkg/config"
)

const (
	writeTimeout   = 10 * time.Second
	maxInboundSize = 4 << 10
)

// Welcome primer frame tras conectar.
type Welcome struct {
	Event string      `json:"event"`
	Data  WelcomeData `json:"data"`
}

// WelcomeData identidad resuelta y salas asignadas.
type WelcomeData struct {
	ClientID string    `json:"clientId"`
	Kind     auth.Kind `json:"kind"`
	Rooms    []string  `json:"rooms"`
}

// Handler atiende las conexiones en tiempo real.
type Handler struct {
	hub      *realtime.Hub
	verifier auth.TokenVerifier
	branches repository.BranchRepository
	cfg      config.RealtimeConfig
	log      zerolog.Logger
}

// NewHandler construye el handler.
func NewHandler(hub *realtime.Hub, verifier auth.TokenVerifier, branches repository.BranchRepository, cfg config.RealtimeConfig, log zerolog.Logger) *Handler {
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = 64
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 25 * time.Second
	}
	return &Handler{
		hub:      hub,
		verifier: verifier,
		branches: branches,
		cfg:      cfg,
		log:      log.With().Str("component", "ws").Logger(),
	}
}

// Routes mux con /ws y /health.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/ws", h.ServeWS)
	return mux
}

// ServeWS resuelve el principal antes del upgrade: un token inválido se rechaza con 401.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p, err := auth.Resolve(r.Context(), h.verifier, CredentialsFromRequest(r))
	if err != nil {
		h.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("conexión rechazada")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	rooms, err := h.roomsFor(r.Context(), p)
	if err != nil {
		h.log.Error().Err(err).Msg("no se pudieron listar las sucursales")
		http.Error(w, "branch lookup unavailable", http.StatusServiceUnavailable)
		return
	}

	srv := websocket.Server{
		Handler: func(conn *websocket.Conn) { h.serve(conn, p, rooms) },
	}
	srv.ServeHTTP(w, r)
}

// roomsFor la administración global se une a cada sucursal activa en el momento de conectar.
func (h *Handler) roomsFor(ctx context.Context, p auth.Principal) ([]string, error) {
	if !auth.IsGlobalAdmin(p) {
		return realtime.RoomsFor(p, nil), nil
	}
	branches, err := h.branches.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(branches))
	for _, b := range branches {
		ids = append(ids, b.ID)
	}
	return realtime.RoomsFor(p, ids), nil
}

func (h *Handler) serve(conn *websocket.Conn, p auth.Principal, rooms []string) {
	defer func() { _ = conn.Close() }()
	conn.MaxPayloadBytes = maxInboundSize

	client := realtime.NewClient(uuid.NewString(), p, h.cfg.SendBuffer)
	h.hub.Register(client, rooms)
	defer h.hub.Unregister(client)

	log := h.log.With().Str("client", client.ID).Str("kind", string(p.Kind())).Logger()
	log.Info().Strs("rooms", rooms).Msg("cliente conectado")
	defer log.Info().Msg("cliente desconectado")

	welcome, _ := json.Marshal(Welcome{
		Event: "connected",
		Data:  WelcomeData{ClientID: client.ID, Kind: p.Kind(), Rooms: nonNil(rooms)},
	})
	if err := h.write(conn, welcome); err != nil {
		return
	}

	// El canal es de solo bajada: lo que envía el cliente se descarta; el lector detecta el cierre.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var discard string
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				if !errors.Is(err, websocket.ErrFrameTooLarge) {
					return
				}
			}
		}
	}()

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-client.Done():
			return
		case frame := <-client.Send():
			if err := h.write(conn, frame); err != nil {
				log.Debug().Err(err).Msg("escritura fallida")
				return
			}
		case <-ticker.C:
			if err := ping(conn); err != nil {
				log.Debug().Err(err).Msg("ping fallido")
				return
			}
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, frame []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return websocket.Message.Send(conn, string(frame))
}

// ping frame de control; un par caído hace fallar la escritura dentro del plazo.
func ping(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	conn.PayloadType = websocket.PingFrame
	_, err := conn.Write(nil)
	conn.PayloadType = websocket.TextFrame
	return err
}

// CredentialsFromRequest token por ?token= o Authorization: Bearer; si no, cabeceras x-username / x-branch-id.
func CredentialsFromRequest(r *http.Request) auth.Credentials {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token = BearerToken(r.Header.Get("Authorization"))
	}
	return auth.Credentials{
		Token:    token,
		Username: r.Header.Get("x-username"),
		BranchID: r.Header.Get("x-branch-id"),
	}
}

// BearerToken extrae el token de una cabecera "Bearer <token>".
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
