// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"
)

// PostgreSQL 数据库实现
type PostgreSQL struct {
	sqlStore
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{sqlStore{db: db, rebind: rebindDollar}}, nil
}

// initPostgresTables 初始化数据库表结构
func initPostgresTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id BIGINT PRIMARY KEY,
            name VARCHAR(255) NOT NULL DEFAULT '',
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );

        CREATE TABLE IF NOT EXISTS games (
            id BIGSERIAL PRIMARY KEY,
            state VARCHAR(16) NOT NULL,
            player_left BIGINT NOT NULL REFERENCES users(id),
            player_right BIGINT REFERENCES users(id),
            play_left VARCHAR(16),
            play_right VARCHAR(16),
            result VARCHAR(16),
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );

        CREATE INDEX IF NOT EXISTS idx_games_state ON games(state);
        CREATE INDEX IF NOT EXISTS idx_games_player_left ON games(player_left);
        CREATE INDEX IF NOT EXISTS idx_games_player_right ON games(player_right);
    `)
	return err
}
