package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"postpilot/domain/model"
)

// EnsurePublicationAuditSchemaMSSQL creates the audit table if not exists (Azure SQL / SQL Server).
func EnsurePublicationAuditSchemaMSSQL(db *sql.DB) error {
	ddl := `IF OBJECT_ID('dbo.publication_audit', 'U') IS NULL
    CREATE TABLE dbo.publication_audit (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        post_id NVARCHAR(64) NOT NULL,
        user_id NVARCHAR(64) NOT NULL,
        platform NVARCHAR(32) NOT NULL,
        status NVARCHAR(16) NOT NULL,
        message NVARCHAR(MAX) NULL,
        external_ref NVARCHAR(255) NULL,
        created_at DATETIMEOFFSET NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create publication_audit table: %w", err)
	}
	return nil
}

// AuditRepositoryMSSQL is the production (Azure SQL) variant of the audit log.
type AuditRepositoryMSSQL struct {
	db *sql.DB
}

func NewAuditRepositoryMSSQL(db *sql.DB) *AuditRepositoryMSSQL { return &AuditRepositoryMSSQL{db: db} }

func (r *AuditRepositoryMSSQL) CreateAudit(ctx context.Context, audits []*model.PublicationAudit) error {
	if len(audits) == 0 {
		return nil
	}
	q := `INSERT INTO dbo.publication_audit (post_id, user_id, platform, status, message, external_ref, created_at) VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7)`
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

func (r *AuditRepositoryMSSQL) GetByPostID(ctx context.Context, postID string) ([]*model.PublicationAudit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, post_id, user_id, platform, status, message, external_ref, created_at FROM dbo.publication_audit WHERE post_id=@p1 ORDER BY created_at ASC, id ASC`, postID)
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
