// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wfunc/rpsserver/logger"
	"github.com/wfunc/rpsserver/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志，输出到 zap
	gormLogger := gormlogger.New(
		zap.NewStdLog(logger.Log.Desugar()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (*GormPostgreSQL, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormUser{}, &models.GormGame{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

func (p *GormPostgreSQL) FindUser(ctx context.Context, id int64) (*models.User, error) {
	var row models.GormUser
	if err := p.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &models.User{ID: row.ID, Name: row.Name}, nil
}

// SaveUser 使用UPSERT保存用户
func (p *GormPostgreSQL) SaveUser(ctx context.Context, user *models.User) error {
	row := models.GormUser{ID: user.ID, Name: user.Name}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&row).Error
}

func (p *GormPostgreSQL) FindGame(ctx context.Context, id int64) (*models.Game, error) {
	var row models.GormGame
	if err := p.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err)
	}
	return row.ToGame(), nil
}

func (p *GormPostgreSQL) ListGames(ctx context.Context) ([]*models.Game, error) {
	var rows []models.GormGame
	if err := p.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	games := make([]*models.Game, 0, len(rows))
	for i := range rows {
		games = append(games, rows[i].ToGame())
	}
	return games, nil
}

func (p *GormPostgreSQL) SaveGame(ctx context.Context, game *models.Game) error {
	row := models.NewGormGame(game)
	db := p.db.WithContext(ctx)

	if game.ID == 0 {
		if err := db.Create(row).Error; err != nil {
			return err
		}
		game.ID = row.ID
		return nil
	}

	// map 形式以便把空值写成 NULL
	result := db.Model(&models.GormGame{}).Where("id = ?", game.ID).Updates(map[string]interface{}{
		"state":        row.State,
		"player_left":  row.PlayerLeft,
		"player_right": row.PlayerRight,
		"play_left":    row.PlayLeft,
		"play_right":   row.PlayRight,
		"result":       row.Result,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *GormPostgreSQL) DeleteGame(ctx context.Context, id int64) error {
	result := p.db.WithContext(ctx).Delete(&models.GormGame{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
