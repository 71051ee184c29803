package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wfunc/rpsserver/models"
)

const queryTimeout = 5 * time.Second

// sqlStore implements Store on database/sql. Queries are written with '?'
// placeholders and rewritten by rebind for drivers that need another style.
type sqlStore struct {
	db     *sql.DB
	rebind func(string) string
}

// rebindDollar rewrites '?' placeholders into PostgreSQL's $1, $2, ...
func rebindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func rebindNone(query string) string { return query }

func (s *sqlStore) FindUser(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u models.User
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, name FROM users WHERE id = ?`), id).Scan(&u.ID, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

func (s *sqlStore) SaveUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
        INSERT INTO users (id, name)
        VALUES (?, ?)
        ON CONFLICT (id)
        DO UPDATE SET name = excluded.name
    `
	if _, err := s.db.ExecContext(ctx, s.rebind(query), user.ID, user.Name); err != nil {
		return fmt.Errorf("save user %d: %w", user.ID, err)
	}
	return nil
}

const gameColumns = `id, state, player_left, player_right, play_left, play_right, result`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	var (
		g         models.Game
		state     string
		right     sql.NullInt64
		playLeft  sql.NullString
		playRight sql.NullString
		res       sql.NullString
	)
	if err := row.Scan(&g.ID, &state, &g.PlayerLeft, &right, &playLeft, &playRight, &res); err != nil {
		return nil, err
	}
	g.State = models.GameState(state)
	if right.Valid {
		v := right.Int64
		g.PlayerRight = &v
	}
	if playLeft.Valid {
		c := models.Choice(playLeft.String)
		g.PlayLeft = &c
	}
	if playRight.Valid {
		c := models.Choice(playRight.String)
		g.PlayRight = &c
	}
	if res.Valid {
		r := models.Result(res.String)
		g.Result = &r
	}
	return &g, nil
}

func (s *sqlStore) FindGame(ctx context.Context, id int64) (*models.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+gameColumns+` FROM games WHERE id = ?`), id)
	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("find game %d: %w", id, err)
	}
	return g, nil
}

func (s *sqlStore) ListGames(ctx context.Context) ([]*models.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString[T ~string](v *T) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}

func (s *sqlStore) SaveGame(ctx context.Context, game *models.Game) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	args := []any{
		string(game.State),
		game.PlayerLeft,
		nullInt(game.PlayerRight),
		nullString(game.PlayLeft),
		nullString(game.PlayRight),
		nullString(game.Result),
	}

	if game.ID == 0 {
		query := `
            INSERT INTO games (state, player_left, player_right, play_left, play_right, result)
            VALUES (?, ?, ?, ?, ?, ?)
            RETURNING id
        `
		if err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&game.ID); err != nil {
			return fmt.Errorf("insert game: %w", err)
		}
		return nil
	}

	query := `
        UPDATE games
        SET state = ?, player_left = ?, player_right = ?, play_left = ?, play_right = ?, result = ?,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `
	res, err := s.db.ExecContext(ctx, s.rebind(query), append(args, game.ID)...)
	if err != nil {
		return fmt.Errorf("update game %d: %w", game.ID, err)
	}
	return expectAffected(res)
}

func (s *sqlStore) DeleteGame(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM games WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete game %d: %w", id, err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Close 关闭数据库连接
func (s *sqlStore) Close() error {
	return s.db.Close()
}
