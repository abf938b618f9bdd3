package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"postpilot/domain/model"
	"postpilot/infrastructure/persistence"
)

func TestAuditRepository_CreateAudit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	msg := "YouTube quota exceeded"
	audits := []*model.PublicationAudit{
		{PostID: "post-1", UserID: "user-1", Platform: "YouTube", Status: "failed", Message: &msg},
		{PostID: "post-1", UserID: "user-1", Platform: "TikTok", Status: "success"},
	}

	mock.ExpectExec("INSERT INTO publication_audit").
		WithArgs("post-1", "user-1", "YouTube", "failed", msg, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO publication_audit").
		WithArgs("post-1", "user-1", "TikTok", "success", nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))

	repo := persistence.NewAuditRepository(db)
	err = repo.CreateAudit(context.Background(), audits)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.False(t, audits[0].CreatedAt.IsZero())
}

func TestAuditRepository_CreateAudit_EmptyIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := persistence.NewAuditRepository(db)
	assert.NoError(t, repo.CreateAudit(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_GetByPostID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "post_id", "user_id", "platform", "status", "message", "external_ref", "created_at"}).
		AddRow(int64(1), "post-1", "user-1", "YouTube", "success", nil, "yt-video-1", created).
		AddRow(int64(2), "post-1", "user-1", "TikTok", "failed", "TikTok upload not implemented", nil, created)

	mock.ExpectQuery("SELECT id, post_id, user_id, platform, status, message, external_ref, created_at FROM publication_audit").
		WithArgs("post-1").
		WillReturnRows(rows)

	repo := persistence.NewAuditRepository(db)
	list, err := repo.GetByPostID(context.Background(), "post-1")

	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "YouTube", list[0].Platform)
	assert.Nil(t, list[0].Message)
	assert.Equal(t, "yt-video-1", *list[0].ExternalRef)
	assert.Equal(t, "TikTok upload not implemented", *list[1].Message)
	assert.Nil(t, list[1].ExternalRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_GetByPostID_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, post_id, user_id, platform, status, message, external_ref, created_at FROM publication_audit").
		WithArgs("post-404").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id", "platform", "status", "message", "external_ref", "created_at"}))

	repo := persistence.NewAuditRepository(db)
	list, err := repo.GetByPostID(context.Background(), "post-404")

	assert.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}
