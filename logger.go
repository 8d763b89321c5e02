package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codesync/wire"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

type RoomUserLogger struct {
	zerolog zerolog.Logger
}

func GetRoomUserLogger(ip string, roomID string, userID string) RoomUserLogger {
	return RoomUserLogger{log.With().Str("ip", ip).Str("room", roomID).Str("user-id", userID).Logger()}
}

func (l RoomUserLogger) JoinedRoom(role wire.Role) {
	l.zerolog.Info().Str("role", string(role)).Msg("Joined room")
}

func (l RoomUserLogger) LeftRoom() {
	l.zerolog.Info().Msg("Left room")
}

func (l RoomUserLogger) IgnoredCodeUpdate() {
	l.zerolog.Debug().Msg("Ignored code update from non-Student")
}

func (l RoomUserLogger) RejectedMessage(err error) {
	l.zerolog.Debug().Err(err).Msg("Rejected message")
}

func LogCreatedRoom(roomID string) {
	log.Info().Str("room", roomID).Msg("Created room")
}

func LogRemovedRoom(roomID string) {
	log.Info().Str("room", roomID).Msg("Removed room")
}

func LogDroppedMessage(userID string) {
	log.Debug().Str("user-id", userID).Msg("Send buffer full, dropped message")
}

func LogStartedServer(port string) {
	log.Info().Msgf("Starting server on port %v", port)
}

func LogErrorWhileUpgradingHTTP(err error) {
	log.Error().Err(err).Msg("Error while upgrading HTTP")
}
