package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/gobwas/ws"

	"codesync/wire"
)

const sendBufferSize = 64

type HTTPHandler struct {
	Registry *Registry
	Resume   *ResumeJWT
}

func NewHTTPServer(registry *Registry, resume *ResumeJWT) http.Handler {
	httpHandler := HTTPHandler{registry, resume}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET"},
		AllowCredentials: false,
	}))
	r.Use(middleware.RealIP)
	r.Use(httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
	r.Use(middleware.Heartbeat("/"))

	r.Get("/ws", httpHandler.websocket())
	r.Get("/code_blocks", httpHandler.getCodeBlocks())
	return r
}

func (h HTTPHandler) websocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			LogErrorWhileUpgradingHTTP(err)
			return
		}
		defer conn.Close()
		participantWs := NewParticipantWebsocket(conn)

		join, ok := awaitJoin(participantWs)
		if !ok {
			return
		}
		userID := join.UserID
		if join.Resume != "" {
			if resumed := h.Resume.UserIDFromResumeToken(join.Resume); resumed != "" {
				userID = resumed
			}
		}
		if userID == "" {
			return
		}

		send := make(chan []byte, sendBufferSize)
		closed := make(chan bool)
		pingTicker := time.NewTicker(pingPeriod)
		resumeKeyTicker := time.NewTicker(resumeKeySendFreq)

		go func() {
			defer pingTicker.Stop()
			defer resumeKeyTicker.Stop()
			sendResumeKey := func() {
				token, err := h.Resume.GenerateResumeToken(userID)
				if err == nil {
					participantWs.SendResumeKey(token)
				}
			}
			sendResumeKey()
			for {
				select {
				case msg := <-send:
					participantWs.SendRaw(msg)
				case <-pingTicker.C:
					participantWs.Ping()
				case <-resumeKeyTicker.C:
					sendResumeKey()
				case <-closed:
					return
				}
			}
		}()

		role, _ := h.Registry.Join(join.Room, userID, send)
		logger := GetRoomUserLogger(r.RemoteAddr, join.Room, userID)
		logger.JoinedRoom(role)

	messageLoop:
		for {
			msg, err := participantWs.ReadMessage()
			if err != nil {
				if IsRecoverable(err) {
					logger.RejectedMessage(err)
					continue
				}
				break
			}
			switch m := msg.(type) {
			case CodeUpdateMessage:
				if !h.Registry.UpdateCode(join.Room, userID, m.Text) {
					logger.IgnoredCodeUpdate()
				}
			case wire.JoinEvent:
				if m.Room == join.Room {
					h.Registry.Join(join.Room, userID, send)
				}
			case wire.LeaveEvent:
				break messageLoop
			}
		}
		close(closed)
		h.Registry.Leave(join.Room, userID, send)
		logger.LeftRoom()
	}
}

// awaitJoin reads until the client's join event; anything sent earlier is
// discarded. A transport error before the join gives up on the connection.
func awaitJoin(participantWs *ParticipantWebsocket) (wire.JoinEvent, bool) {
	for {
		msg, err := participantWs.ReadMessage()
		if err != nil {
			if IsRecoverable(err) {
				continue
			}
			return wire.JoinEvent{}, false
		}
		if join, ok := msg.(wire.JoinEvent); ok {
			return join, true
		}
	}
}

func (h HTTPHandler) getCodeBlocks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(codeBlocks)
	}
}
