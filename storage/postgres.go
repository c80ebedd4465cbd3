package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/NikhilRaikwar/DrawParty/domain"
	"github.com/NikhilRaikwar/DrawParty/words"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (pg *PostgresStore) Close() {
	pg.pool.Close()
}

var _ Store = (*PostgresStore)(nil)

func dbErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}

func (pg *PostgresStore) CreateRoom(ctx context.Context, r domain.Room) error {
	settings, err := json.Marshal(r.Settings)
	if err != nil {
		return dbErr(err)
	}
	state, err := json.Marshal(r.GameState)
	if err != nil {
		return dbErr(err)
	}

	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	_, err = pg.pool.Exec(ctx,
		`INSERT INTO rooms(id, code, host_id, settings, game_state, created_at, updated_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.Code, r.HostID, settings, state, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// "23505" is the PostgreSQL error code for unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: room code %s already in use", domain.UnexpectedDatabaseError, r.Code)
		}
		return dbErr(err)
	}
	return nil
}

func scanRoom(row pgx.Row) (domain.Room, error) {
	var r domain.Room
	var settings, state []byte

	err := row.Scan(&r.ID, &r.Code, &r.HostID, &settings, &state, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return domain.Room{}, err
	}
	if err := json.Unmarshal(settings, &r.Settings); err != nil {
		return domain.Room{}, err
	}
	if err := json.Unmarshal(state, &r.GameState); err != nil {
		return domain.Room{}, err
	}
	return r, nil
}

const roomColumns = "id, code, host_id, settings, game_state, created_at, updated_at"

func (pg *PostgresStore) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	row := pg.pool.QueryRow(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = $1", id)
	r, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, dbErr(err)
	}
	return r, nil
}

func (pg *PostgresStore) GetRoomByCode(ctx context.Context, code string) (domain.Room, error) {
	row := pg.pool.QueryRow(ctx, "SELECT "+roomColumns+" FROM rooms WHERE code = UPPER($1)", code)
	r, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, dbErr(err)
	}
	return r, nil
}

func (pg *PostgresStore) UpdateRoom(ctx context.Context, r domain.Room) error {
	settings, err := json.Marshal(r.Settings)
	if err != nil {
		return dbErr(err)
	}
	state, err := json.Marshal(r.GameState)
	if err != nil {
		return dbErr(err)
	}

	tag, err := pg.pool.Exec(ctx,
		`UPDATE rooms SET host_id = $2, settings = $3, game_state = $4, updated_at = NOW() WHERE id = $1`,
		r.ID, r.HostID, settings, state)
	if err != nil {
		return dbErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// DeleteRoom relies on ON DELETE CASCADE for players, messages, sessions
// and the vault entry.
func (pg *PostgresStore) DeleteRoom(ctx context.Context, id string) error {
	tag, err := pg.pool.Exec(ctx, "DELETE FROM rooms WHERE id = $1", id)
	if err != nil {
		return dbErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (pg *PostgresStore) ListPublicRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := pg.pool.Query(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE (settings->>'isPublic')::boolean ORDER BY created_at")
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, dbErr(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return out, nil
}

func (pg *PostgresStore) ListRoomsIdleSince(ctx context.Context, cutoff time.Time) ([]domain.Room, error) {
	rows, err := pg.pool.Query(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE updated_at < $1", cutoff)
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, dbErr(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return out, nil
}

func (pg *PostgresStore) UpsertPlayer(ctx context.Context, p domain.Player) error {
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	_, err := pg.pool.Exec(ctx,
		`INSERT INTO players(room_id, id, name, avatar, score, is_host, is_ready, is_muted, is_connected, is_bot, joined_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (room_id, id) DO UPDATE SET
		   name = EXCLUDED.name, avatar = EXCLUDED.avatar, score = EXCLUDED.score,
		   is_host = EXCLUDED.is_host, is_ready = EXCLUDED.is_ready, is_muted = EXCLUDED.is_muted,
		   is_connected = EXCLUDED.is_connected, is_bot = EXCLUDED.is_bot`,
		p.RoomID, p.ID, p.Name, p.Avatar, p.Score, p.IsHost, p.IsReady, p.IsMuted, p.IsConnected, p.IsBot, p.JoinedAt)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

const playerColumns = "room_id, id, name, avatar, score, is_host, is_ready, is_muted, is_connected, is_bot, joined_at"

func scanPlayer(row pgx.Row) (domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.RoomID, &p.ID, &p.Name, &p.Avatar, &p.Score,
		&p.IsHost, &p.IsReady, &p.IsMuted, &p.IsConnected, &p.IsBot, &p.JoinedAt)
	return p, err
}

func (pg *PostgresStore) GetPlayer(ctx context.Context, roomID, playerID string) (domain.Player, error) {
	row := pg.pool.QueryRow(ctx,
		"SELECT "+playerColumns+" FROM players WHERE room_id = $1 AND id = $2", roomID, playerID)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Player{}, domain.ErrPlayerNotFound
		}
		return domain.Player{}, dbErr(err)
	}
	return p, nil
}

func (pg *PostgresStore) ListPlayers(ctx context.Context, roomID string) ([]domain.Player, error) {
	rows, err := pg.pool.Query(ctx,
		"SELECT "+playerColumns+" FROM players WHERE room_id = $1 ORDER BY joined_at, id", roomID)
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()

	var out []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, dbErr(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return out, nil
}

func (pg *PostgresStore) DeletePlayer(ctx context.Context, roomID, playerID string) error {
	tag, err := pg.pool.Exec(ctx,
		"DELETE FROM players WHERE room_id = $1 AND id = $2", roomID, playerID)
	if err != nil {
		return dbErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (pg *PostgresStore) AppendMessage(ctx context.Context, m domain.ChatMessage) error {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	_, err := pg.pool.Exec(ctx,
		`INSERT INTO messages(id, room_id, player_id, player_name, content, is_correct_guess, is_system_message, sent_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.RoomID, m.PlayerID, m.PlayerName, m.Content, m.IsCorrectGuess, m.IsSystemMessage, m.SentAt)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func (pg *PostgresStore) ListMessages(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	query := `SELECT id, room_id, player_id, player_name, content, is_correct_guess, is_system_message, sent_at
	          FROM messages WHERE room_id = $1 ORDER BY sent_at`
	args := []any{roomID}
	if limit > 0 {
		// Newest N, returned oldest first.
		query = `SELECT * FROM (
		           SELECT id, room_id, player_id, player_name, content, is_correct_guess, is_system_message, sent_at
		           FROM messages WHERE room_id = $1 ORDER BY sent_at DESC LIMIT $2
		         ) tail ORDER BY sent_at`
		args = append(args, limit)
	}

	rows, err := pg.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		err := rows.Scan(&m.ID, &m.RoomID, &m.PlayerID, &m.PlayerName, &m.Content,
			&m.IsCorrectGuess, &m.IsSystemMessage, &m.SentAt)
		if err != nil {
			return nil, dbErr(err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return out, nil
}

func (pg *PostgresStore) PutSession(ctx context.Context, s domain.Session) error {
	_, err := pg.pool.Exec(ctx,
		`INSERT INTO sessions(room_id, player_id, token, expires_at)
		 VALUES($1, $2, $3, $4)
		 ON CONFLICT (room_id, player_id) DO UPDATE SET
		   token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`,
		s.RoomID, s.PlayerID, s.Token, s.ExpiresAt)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func (pg *PostgresStore) GetSession(ctx context.Context, roomID, playerID string) (domain.Session, error) {
	var s domain.Session
	row := pg.pool.QueryRow(ctx,
		"SELECT room_id, player_id, token, expires_at FROM sessions WHERE room_id = $1 AND player_id = $2",
		roomID, playerID)
	err := row.Scan(&s.RoomID, &s.PlayerID, &s.Token, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, dbErr(err)
	}
	return s, nil
}

func (pg *PostgresStore) DeleteSession(ctx context.Context, roomID, playerID string) error {
	_, err := pg.pool.Exec(ctx,
		"DELETE FROM sessions WHERE room_id = $1 AND player_id = $2", roomID, playerID)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func (pg *PostgresStore) GetVault(ctx context.Context, roomID string) (domain.VaultEntry, error) {
	var e domain.VaultEntry
	row := pg.pool.QueryRow(ctx,
		"SELECT room_id, word_options, current_word FROM vaults WHERE room_id = $1", roomID)
	err := row.Scan(&e.RoomID, &e.WordOptions, &e.CurrentWord)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.VaultEntry{}, domain.ErrRoomNotFound
		}
		return domain.VaultEntry{}, dbErr(err)
	}
	return e, nil
}

func (pg *PostgresStore) PutVault(ctx context.Context, e domain.VaultEntry) error {
	_, err := pg.pool.Exec(ctx,
		`INSERT INTO vaults(room_id, word_options, current_word)
		 VALUES($1, $2, $3)
		 ON CONFLICT (room_id) DO UPDATE SET
		   word_options = EXCLUDED.word_options, current_word = EXCLUDED.current_word`,
		e.RoomID, e.WordOptions, e.CurrentWord)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func (pg *PostgresStore) DeleteVault(ctx context.Context, roomID string) error {
	_, err := pg.pool.Exec(ctx, "DELETE FROM vaults WHERE room_id = $1", roomID)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

// Generate implements game.WordSource against the seeded words table,
// mixing difficulties the same way the embedded lists do. Languages the
// table has no rows for fall back to English rather than failing the
// round. A failed query returns an empty slice; the caller treats that
// as no candidates.
func (pg *PostgresStore) Generate(language string, count int) []string {
	out := pg.generateFor(language, count)
	if len(out) == 0 && language != "en" {
		log.Debug().Str("language", language).Msg("no words for language, falling back to en")
		out = pg.generateFor("en", count)
	}
	return out
}

func (pg *PostgresStore) generateFor(language string, count int) []string {
	ctx := context.Background()

	easy, medium, hard := words.Mix(count)
	out := make([]string, 0, count)
	for _, tier := range []struct {
		difficulty string
		n          int
	}{
		{"easy", easy},
		{"medium", medium},
		{"hard", hard},
	} {
		if tier.n == 0 {
			continue
		}
		rows, err := pg.pool.Query(ctx,
			"SELECT word FROM words WHERE language = $1 AND difficulty = $2 ORDER BY RANDOM() LIMIT $3",
			language, tier.difficulty, tier.n)
		if err != nil {
			log.Error().Err(err).Msg("word query failed")
			return []string{}
		}
		for rows.Next() {
			var word string
			if err := rows.Scan(&word); err != nil {
				continue
			}
			out = append(out, word)
		}
		rows.Close()
	}
	return out
}
