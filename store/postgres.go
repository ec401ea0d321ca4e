package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog-api/models"

	"github.com/google/uuid"
)

const postColumns = "id, title, content, author, published, created_at, updated_at"

// PostgresStore implements Store on the posts table.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)
var _ Pinger = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.Author, &post.Published, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return models.Post{}, err
	}
	post.CreatedAt = post.CreatedAt.UTC()
	post.UpdatedAt = post.UpdatedAt.UTC()
	return post, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) (posts []models.Post, err error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+postColumns+" FROM posts ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing rows: %w", closeErr)
		}
	}()

	posts = []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (models.Post, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = $1", id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, fmt.Errorf("post %s: %w", id, ErrNotFound)
		}
		return models.Post{}, fmt.Errorf("error querying post %s: %w", id, err)
	}
	return post, nil
}

func (s *PostgresStore) Insert(ctx context.Context, post models.Post) (models.Post, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO posts ("+postColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		post.ID, post.Title, post.Content, post.Author, post.Published, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return models.Post{}, fmt.Errorf("error inserting post %s: %w", post.ID, err)
	}
	return post, nil
}

func (s *PostgresStore) UpdateByID(ctx context.Context, id uuid.UUID, post models.Post) (models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $2, content = $3, author = $4, published = $5, updated_at = $6
		WHERE id = $1
		RETURNING `+postColumns,
		id, post.Title, post.Content, post.Author, post.Published, post.UpdatedAt)
	updated, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, fmt.Errorf("post %s: %w", id, ErrNotFound)
		}
		return models.Post{}, fmt.Errorf("error updating post %s: %w", id, err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting post %s: %w", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
