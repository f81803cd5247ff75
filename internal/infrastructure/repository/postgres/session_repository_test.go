package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

func newSessionRepoWithMock(t *testing.T) (*SessionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &SessionRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestEnsureSessionInsertsThenSelects(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO chat_sessions").
		WithArgs("sess-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, created_at, updated_at").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("sess-1", now, now))

	session, err := repo.EnsureSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("EnsureSession() error = %v", err)
	}
	if session.ID != "sess-1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListMessagesReturnsDomainNotFoundForUnknownSession(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.ListMessages(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListMessagesReturnsChronologicalHistory(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT id, session_id, origin, content, source, created_at").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "origin", "content", "source", "created_at"}).
			AddRow("m1", "sess-1", domain.MessageOriginHuman, "any returns?", nil, now).
			AddRow("m2", "sess-1", domain.MessageOriginAI, "Returns accepted within 30 days.", string(domain.SourceFAQ), now.Add(time.Second)))

	messages, err := repo.ListMessages(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Origin != domain.MessageOriginHuman || messages[1].Source != domain.SourceFAQ {
		t.Fatalf("unexpected messages %+v", messages)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendMessageTouchesSession(t *testing.T) {
	repo, mock, done := newSessionRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs("m1", "sess-1", domain.MessageOriginHuman, "hello", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs("sess-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendMessage(context.Background(), domain.SessionMessage{
		ID:        "m1",
		SessionID: "sess-1",
		Origin:    domain.MessageOriginHuman,
		Content:   "hello",
	})
	if err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
