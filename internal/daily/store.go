package daily

import (
	"context"
	"database/sql"
)

// DefaultLimit caps leaderboard rows when no limit is given.
const DefaultLimit = 20

type Result struct {
	PlayerID string `json:"playerId"`
	Game     string `json:"game"`
	Date     string `json:"date"`
	Score    int    `json:"score"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether playerID has a result for game on date.
func (s *Store) AlreadyPlayed(ctx context.Context, playerID, game, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE player_id=? AND game=? AND date=?`,
		playerID, game, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a result. Only the first result of the day counts;
// later ones are ignored without error. It reports whether a row was written.
func (s *Store) InsertResult(ctx context.Context, r Result) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(player_id, game, date, score)
		VALUES(?,?,?,?)`, r.PlayerID, r.Game, r.Date, r.Score,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

type LBRow struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username,omitempty"`
	Score    int    `json:"score"`
}

// Leaderboard returns the best scores for game on date, earliest first on ties.
func (s *Store) Leaderboard(ctx context.Context, game, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.player_id, COALESCE(p.username, ''), d.score
		FROM daily_results d
		LEFT JOIN players p ON p.id = d.player_id
		WHERE d.game=? AND d.date=?
		ORDER BY d.score DESC, d.created_at ASC
		LIMIT ?`, game, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Username, &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
