package postgres

import (
	"context"
	"database/sql"
)

// 目录表 DDL。metadata 存注册时序列化的完整元数据。
const archivedVideosDDL = `
CREATE TABLE IF NOT EXISTS archived_videos (
    video_id    TEXT PRIMARY KEY,
    metadata    JSONB NOT NULL,
    archived_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// ApplyMigrations 执行目录表迁移（幂等）。
// 说明：只有一张表，保持最朴素的内联 DDL；后续再有演进可切换 goose/atlas。
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, archivedVideosDDL)
	return err
}
