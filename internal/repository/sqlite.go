package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens dsn, runs migrations and seeds the activity catalogue.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.seedActivities(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed activities: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS activities (
			name TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			schedule TEXT NOT NULL,
			max_participants INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			activity_name TEXT NOT NULL,
			email TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (activity_name, email),
			FOREIGN KEY (activity_name) REFERENCES activities(name)
		)`,
		`CREATE TABLE IF NOT EXISTS generation_calls (
			call_id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL,
			stream BOOLEAN NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_calls_conversation ON generation_calls(conversation_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

type seedActivity struct {
	domain.Activity
	participants []string
}

func (s *SQLiteStore) seedActivities() error {
	seeds := []seedActivity{
		{
			Activity: domain.Activity{
				Name:            "Chess Club",
				Description:     "Learn strategies and compete in chess tournaments",
				Schedule:        "Fridays, 3:30 PM - 5:00 PM",
				MaxParticipants: 12,
			},
			participants: []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Activity: domain.Activity{
				Name:            "Programming Class",
				Description:     "Learn programming fundamentals and build software projects",
				Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
				MaxParticipants: 20,
			},
			participants: []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Activity: domain.Activity{
				Name:            "Gym Class",
				Description:     "Physical education and sports activities",
				Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
				MaxParticipants: 30,
			},
			participants: []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
	}

	ctx := context.Background()
	for _, seed := range seeds {
		res, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO activities (name, description, schedule, max_participants) VALUES (?, ?, ?, ?)`,
			seed.Name, seed.Description, seed.Schedule, seed.MaxParticipants)
		if err != nil {
			return err
		}
		// Only fill participants for freshly inserted activities.
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		for _, email := range seed.participants {
			if _, err := s.AddParticipant(ctx, seed.Name, email); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type participantRow struct {
	ActivityName string `db:"activity_name"`
	Email        string `db:"email"`
}

// ListActivities returns all activities with their participants.
func (s *SQLiteStore) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	var activities []domain.Activity
	if err := sqlscan.Select(ctx, s.db, &activities,
		`SELECT name, description, schedule, max_participants FROM activities ORDER BY name`); err != nil {
		return nil, err
	}

	var rows []participantRow
	if err := sqlscan.Select(ctx, s.db, &rows,
		`SELECT activity_name, email FROM participants ORDER BY id`); err != nil {
		return nil, err
	}

	byName := make(map[string][]string)
	for _, r := range rows {
		byName[r.ActivityName] = append(byName[r.ActivityName], r.Email)
	}
	for i := range activities {
		activities[i].Participants = byName[activities[i].Name]
		if activities[i].Participants == nil {
			activities[i].Participants = []string{}
		}
	}
	return activities, nil
}

// GetActivity retrieves an activity by name. It returns nil, nil when absent.
func (s *SQLiteStore) GetActivity(ctx context.Context, name string) (*domain.Activity, error) {
	var activity domain.Activity
	err := sqlscan.Get(ctx, s.db, &activity,
		`SELECT name, description, schedule, max_participants FROM activities WHERE name = ?`, name)
	if sqlscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	activity.Participants = []string{}
	if err := sqlscan.Select(ctx, s.db, &activity.Participants,
		`SELECT email FROM participants WHERE activity_name = ? ORDER BY id`, name); err != nil {
		return nil, err
	}
	return &activity, nil
}

// AddParticipant signs email up for the activity if there is room.
// It returns false when the activity is full and domain.ErrAlreadySignedUp
// when email is already a participant.
func (s *SQLiteStore) AddParticipant(ctx context.Context, activityName, email string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (activity_name, email, created_at)
		 SELECT ?, ?, ?
		 WHERE (SELECT COUNT(*) FROM participants WHERE activity_name = ?)
		     < (SELECT max_participants FROM activities WHERE name = ?)`,
		activityName, email, time.Now(), activityName, activityName)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return false, domain.ErrAlreadySignedUp
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RemoveParticipant removes email from the activity. It returns false when
// email was not signed up.
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, activityName, email string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM participants WHERE activity_name = ? AND email = ?`,
		activityName, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateGenerationCall records a generation call.
func (s *SQLiteStore) CreateGenerationCall(ctx context.Context, call *domain.GenerationCall) error {
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_calls (call_id, conversation_id, model, stream, latency_ms, prompt_tokens, completion_tokens, total_tokens, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		call.CallID, call.ConversationID, call.Model, call.Stream, call.LatencyMs,
		call.PromptTokens, call.CompletionTokens, call.TotalTokens, call.Error, call.CreatedAt)
	return err
}

// ListGenerationCalls returns the most recent calls first, optionally
// filtered by conversation.
func (s *SQLiteStore) ListGenerationCalls(ctx context.Context, conversationID string, limit int) ([]domain.GenerationCall, error) {
	query := `SELECT call_id, conversation_id, model, stream, latency_ms, prompt_tokens, completion_tokens, total_tokens, error, created_at
		FROM generation_calls`
	args := []interface{}{}

	if conversationID != "" {
		query += ` WHERE conversation_id = ?`
		args = append(args, conversationID)
	}

	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	calls := []domain.GenerationCall{}
	if err := sqlscan.Select(ctx, s.db, &calls, query, args...); err != nil {
		return nil, err
	}
	return calls, nil
}
