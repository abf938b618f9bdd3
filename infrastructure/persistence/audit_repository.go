package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"postpilot/domain/model"
	"postpilot/infrastructure/logger"
)

// EnsurePublicationAuditSchema creates the audit table if not exists (PostgreSQL).
func EnsurePublicationAuditSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS publication_audit (
        id BIGSERIAL PRIMARY KEY,
        post_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        platform TEXT NOT NULL,
        status TEXT NOT NULL,
        message TEXT,
        external_ref TEXT,
        created_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create publication_audit table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_publication_audit_post_id ON publication_audit(post_id)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_publication_audit_post_id")
	}
	return nil
}

// AuditRepository implements the publication audit log on PostgreSQL.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) CreateAudit(ctx context.Context, audits []*model.PublicationAudit) error {
	if len(audits) == 0 {
		return nil
	}
	q := `INSERT INTO publication_audit (post_id, user_id, platform, status, message, external_ref, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	now := time.Now().UTC()
	for _, a := range audits {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if _, err := r.db.ExecContext(ctx, q, a.PostID, a.UserID, a.Platform, a.Status, a.Message, a.ExternalRef, a.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *AuditRepository) GetByPostID(ctx context.Context, postID string) ([]*model.PublicationAudit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, post_id, user_id, platform, status, message, external_ref, created_at FROM publication_audit WHERE post_id=$1 ORDER BY created_at ASC, id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.PublicationAudit
	for rows.Next() {
		a := &model.PublicationAudit{}
		var msg, ref sql.NullString
		if err := rows.Scan(&a.ID, &a.PostID, &a.UserID, &a.Platform, &a.Status, &msg, &ref, &a.CreatedAt); err != nil {
			return nil, err
		}
		if msg.Valid {
			a.Message = &msg.String
		}
		if ref.Valid {
			a.ExternalRef = &ref.String
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
