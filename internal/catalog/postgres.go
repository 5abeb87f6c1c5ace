package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/azhengyongqin/archivebot/internal/model"
	"github.com/azhengyongqin/archivebot/internal/storage/postgres"
)

// ArchivedVideo 目录表记录
type ArchivedVideo struct {
	VideoID    string    `gorm:"column:video_id;primaryKey"`
	Metadata   []byte    `gorm:"column:metadata;type:jsonb;not null"`
	ArchivedAt time.Time `gorm:"column:archived_at;not null;default:now()"`
}

// TableName 指定表名
func (ArchivedVideo) TableName() string {
	return "archived_videos"
}

// Postgres 自建目录后端：把归档记录落在本地 PostgreSQL，
// 用于不依赖外部归档站点的部署。
type Postgres struct {
	db *postgres.DB
}

// NewPostgres 创建 Postgres 目录后端并执行迁移
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	// 迁移用独立的 database/sql 连接，完成即关闭
	mdb, err := postgres.OpenStdlib(dsn)
	if err != nil {
		return nil, err
	}
	if err := postgres.ApplyMigrations(ctx, mdb); err != nil {
		mdb.Close()
		return nil, fmt.Errorf("apply catalog migrations: %w", err)
	}
	mdb.Close()

	db, err := postgres.NewDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Close 关闭数据库连接
func (p *Postgres) Close() error {
	return p.db.Close()
}

// DB 返回底层连接（用于健康检查）
func (p *Postgres) DB() *postgres.DB {
	return p.db
}

// IsArchived 查询某视频是否已归档
func (p *Postgres) IsArchived(ctx context.Context, id string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&ArchivedVideo{}).
		Where("video_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("query catalog: %w", err)
	}
	return count > 0, nil
}

// Archive 注册视频及其元数据；重复注册返回 ErrConflict
func (p *Postgres) Archive(ctx context.Context, id string, metadata *model.Metadata) error {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	record := ArchivedVideo{
		VideoID:    id,
		Metadata:   raw,
		ArchivedAt: time.Now().UTC(),
	}
	if err := p.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("insert catalog record: %w", err)
	}
	return nil
}
