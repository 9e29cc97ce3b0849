package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

func newMockSessionRepo(t *testing.T) (*SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestInsertSession(t *testing.T) {
	repo, mock := newMockSessionRepo(t)
	session := &domain.CleaningSession{
		SessionID:                uuid.NewString(),
		ArticleID:                "art-1",
		Domain:                   "example.com",
		CharsRemoved:             120,
		PatternsMatched:          []string{domain.PatternTypeSubscription},
		PersistentRemovals:       1,
		SocialShareHeaderRemoved: true,
	}

	mock.ExpectExec("INSERT INTO cleaning_sessions").
		WithArgs(session.SessionID, session.ArticleID, session.Domain,
			session.CharsRemoved, sqlmock.AnyArg(), session.PersistentRemovals,
			session.SocialShareHeaderRemoved).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.InsertSession(context.Background(), session)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertWireDetection(t *testing.T) {
	repo, mock := newMockSessionRepo(t)
	sessionID := uuid.NewString()
	detection := &domain.WireDetection{
		Provider:        "CNN NewsSource",
		Confidence:      0.9,
		DetectionMethod: domain.DetectionMethodFooterCopyright,
	}

	mock.ExpectExec("INSERT INTO wire_detections").
		WithArgs(sessionID, "example.com", detection.Provider,
			detection.Confidence, detection.DetectionMethod).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.InsertWireDetection(context.Background(), sessionID, "example.com", detection)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateDomains(t *testing.T) {
	repo, mock := newMockSessionRepo(t)

	mock.ExpectQuery("SELECT cs.domain").
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"domain"}).
			AddRow("fresh.example.com").
			AddRow("stale.example.com"))

	domains, err := repo.CandidateDomains(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"fresh.example.com", "stale.example.com"}, domains)
	assert.NoError(t, mock.ExpectationsWereMet())
}
