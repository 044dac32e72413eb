package store

import (
	"context"
	"encoding/json"
	"time"

	"tunequiz/pkg/protocol"
)

const resultsSchema = `
CREATE TABLE IF NOT EXISTS game_results (
	id          BIGINT AUTO_INCREMENT PRIMARY KEY,
	room_code   VARCHAR(8)  NOT NULL,
	game_id     VARCHAR(64) NOT NULL,
	standings   JSON        NOT NULL,
	finished_at TIMESTAMP   NOT NULL,
	UNIQUE KEY uniq_game (game_id)
)`

func (s *Store) ensureSchema() error {
	_, err := s.MySQL.Exec(resultsSchema)
	return err
}

// SaveResult persists a finished room's final standings. Skipped silently
// when MySQL is not configured; the caller already holds the idempotency key
// so a duplicate insert can only come from a racing process and the unique
// game_id constraint absorbs it.
func (s *Store) SaveResult(ctx context.Context, code, gameID string, standings []*protocol.StandingEntry) error {
	if s.MySQL == nil {
		s.log.Debug("result write skipped, mysql not configured")
		return nil
	}
	payload, err := json.Marshal(standings)
	if err != nil {
		return err
	}
	_, err = s.MySQL.ExecContext(ctx,
		`INSERT IGNORE INTO game_results (room_code, game_id, standings, finished_at) VALUES (?, ?, ?, ?)`,
		code, gameID, payload, time.Now().UTC(),
	)
	return err
}
