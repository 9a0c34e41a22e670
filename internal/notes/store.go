// Package notes persists free-form character notes in SQLite.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
)

// Note is one stored character note.
type Note struct {
	ID          int64     `json:"id"`
	CharacterID int       `json:"character_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	character_id INTEGER NOT NULL,
	content      TEXT    NOT NULL,
	created_at   TEXT    NOT NULL,
	updated_at   TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_character_id ON notes(character_id);
`

// Store is a SQLite-backed notes store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the notes database and bootstraps the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "lore-notes.db"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening notes database: %w", err)
	}

	// SQLite supports a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrapping notes schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Create inserts a new note.
func (s *Store) Create(ctx context.Context, characterID int, content string) (*Note, error) {
	if characterID < 1 {
		return nil, apperrors.ValidationError("character_id must be >= 1")
	}
	if content == "" {
		return nil, apperrors.ValidationError("content must not be empty")
	}

	now := time.Now().UTC()
	ts := now.Format(time.RFC3339Nano)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (character_id, content, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		characterID, content, ts, ts)
	if err != nil {
		return nil, apperrors.InternalError("creating note", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, apperrors.InternalError("reading note id", err)
	}

	return &Note{
		ID:          id,
		CharacterID: characterID,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Get returns a note by ID.
func (s *Store) Get(ctx context.Context, id int64) (*Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, character_id, content, created_at, updated_at FROM notes WHERE id = ?`, id)

	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundError(fmt.Sprintf("note %d", id))
	}
	if err != nil {
		return nil, apperrors.InternalError("reading note", err)
	}
	return note, nil
}

// ListByCharacter returns notes for a character, newest first, with the
// total count before limit/offset.
func (s *Store) ListByCharacter(ctx context.Context, characterID, limit, offset int) ([]Note, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE character_id = ?`, characterID).Scan(&total); err != nil {
		return nil, 0, apperrors.InternalError("counting notes", err)
	}

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, character_id, content, created_at, updated_at
		 FROM notes WHERE character_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		characterID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError("listing notes", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, 0, apperrors.InternalError("scanning note", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.InternalError("listing notes", err)
	}

	return notes, total, nil
}

// Update replaces a note's content and refreshes its updated timestamp.
func (s *Store) Update(ctx context.Context, id int64, content string) (*Note, error) {
	if content == "" {
		return nil, apperrors.ValidationError("content must not be empty")
	}

	ts := time.Now().UTC().Format(time.RFC3339Nano)

	result, err := s.db.ExecContext(ctx,
		`UPDATE notes SET content = ?, updated_at = ? WHERE id = ?`, content, ts, id)
	if err != nil {
		return nil, apperrors.InternalError("updating note", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.InternalError("updating note", err)
	}
	if affected == 0 {
		return nil, apperrors.NotFoundError(fmt.Sprintf("note %d", id))
	}

	return s.Get(ctx, id)
}

// Delete removes a note.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return apperrors.InternalError("deleting note", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.InternalError("deleting note", err)
	}
	if affected == 0 {
		return apperrors.NotFoundError(fmt.Sprintf("note %d", id))
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*Note, error) {
	var note Note
	var createdAt, updatedAt string

	if err := row.Scan(&note.ID, &note.CharacterID, &note.Content, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		note.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		note.UpdatedAt = ts
	}
	return &note, nil
}
