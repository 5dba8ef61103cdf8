package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/manudrel/elara/internal/config"
	"github.com/manudrel/elara/internal/contextstore"
	"github.com/manudrel/elara/internal/observability"
	"github.com/manudrel/elara/internal/protocol"
	"github.com/manudrel/elara/internal/registry"
)

// MessageGateway handles one inbound message end to end.
type MessageGateway interface {
	Handle(ctx context.Context, userID, chatID int64, senderName, text string) (string, bool)
}

type Server struct {
	cfg      config.Config
	gw       MessageGateway
	reg      *registry.Registry
	contexts *contextstore.Store
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(cfg config.Config, gw MessageGateway, reg *registry.Registry, contexts *contextstore.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		gw:       gw,
		reg:      reg,
		contexts: contexts,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up. Non-browser clients
				// often omit Origin; allow them.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/messages", s.handlePostMessage)
	r.Get("/ws", s.handleWS)

	r.Get("/v1/users", s.handleListUsers)
	r.Post("/v1/users", s.handleCreateUser)
	r.Delete("/v1/users/{id}", s.handleDeleteUser)
	r.Get("/v1/contexts", s.handleListContexts)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"users":  len(s.reg.ListAll()),
	})
}

type messageRequest struct {
	UserID int64  `json:"user_id"`
	ChatID int64  `json:"chat_id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type messageResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.UserID == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "user_id is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	reply, ok := s.gw.Handle(r.Context(), req.UserID, req.ChatID, req.Sender, req.Text)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Reply: reply})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(64 << 10)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		msg, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.writeWS(conn, protocol.ErrorEvent{
				Type:   protocol.TypeErrorEvent,
				Code:   "invalid_message",
				Detail: err.Error(),
			})
			continue
		}

		reply, ok := s.gw.Handle(r.Context(), msg.UserID, msg.ChatID, msg.Sender, msg.Text)
		if !ok {
			s.writeWS(conn, protocol.MessageDropped{
				Type:   protocol.TypeMessageDropped,
				UserID: msg.UserID,
				Reason: "untrusted_sender",
			})
			continue
		}
		s.writeWS(conn, protocol.AssistantReply{
			Type:   protocol.TypeAssistantReply,
			UserID: msg.UserID,
			ChatID: msg.ChatID,
			Text:   reply,
		})
	}
}

func (s *Server) writeWS(conn *websocket.Conn, msg any) {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_ = conn.WriteJSON(msg)
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"users": s.reg.ListAll()})
}

type createUserRequest struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Mood        string   `json:"mood"`
	Permissions []string `json:"permissions"`
	Trustable   bool     `json:"trustable"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.ID == 0 || strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "id and name are required")
		return
	}

	u := registry.User{
		ID:          req.ID,
		Name:        strings.TrimSpace(req.Name),
		Permissions: req.Permissions,
		Trustable:   req.Trustable,
	}
	if req.Role != "" {
		role, ok := registry.ParseRole(req.Role)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_role", "role must be Developer, Tester or User")
			return
		}
		u.Role = role
	}
	if req.Mood != "" {
		mood, ok := registry.ParseMood(req.Mood)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_mood", "mood must be good, bad or neutral")
			return
		}
		u.Mood = mood
	}

	if err := s.reg.Create(r.Context(), u); err != nil {
		if errors.Is(err, registry.ErrDuplicateID) {
			respondError(w, http.StatusConflict, "duplicate_id", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "persistence_failed", err.Error())
		return
	}
	s.metrics.RegistryUsers.Set(float64(len(s.reg.ListAll())))

	created, _ := s.reg.GetByID(u.ID)
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "id must be an integer")
		return
	}

	if err := s.reg.Delete(r.Context(), id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user_not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "persistence_failed", err.Error())
		return
	}
	s.metrics.RegistryUsers.Set(float64(len(s.reg.ListAll())))
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleListContexts(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"keys": s.contexts.Keys()})
}

func decodeJSON(r *http.Request, dst any) error {
	defer io.Copy(io.Discard, r.Body)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code, detail string) {
	respondJSON(w, status, map[string]string{"code": code, "detail": detail})
}
