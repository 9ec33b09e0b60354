// Package history keeps a local journal of the mutating operations this
// client has sent to the API. It is write-mostly: nothing here is consulted
// to answer API queries.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type Entry struct {
	ID           string    `json:"id" yaml:"id"`
	Operation    string    `json:"operation" yaml:"operation"`
	ProjectKey   string    `json:"projectKey" yaml:"project_key"`
	DeploymentID uint64    `json:"deploymentId" yaml:"deployment_id"`
	Commit       string    `json:"commit,omitempty" yaml:"commit,omitempty"`
	Type         string    `json:"type,omitempty" yaml:"type,omitempty"`
	QueryImage   string    `json:"queryImage,omitempty" yaml:"query_image,omitempty"`
	IndexerImage string    `json:"indexerImage,omitempty" yaml:"indexer_image,omitempty"`
	CreatedAt    time.Time `json:"createdAt" yaml:"created_at"`
}

type Filter struct {
	ProjectKey string
	Operation  string
	Limit      int
}

type Journal struct {
	db *sql.DB
}

func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "sqctl", "history.db")
}

func Open(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return j, nil
}

func (j *Journal) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS operations (
			id TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			project_key TEXT NOT NULL,
			deployment_id INTEGER,
			commit_sha TEXT,
			deployment_type TEXT,
			query_image TEXT,
			indexer_image TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_project_key ON operations(project_key)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at)`,
	}

	for _, query := range queries {
		if _, err := j.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores e, assigning an ID and timestamp when they are empty.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO operations
		(id, operation, project_key, deployment_id, commit_sha, deployment_type, query_image, indexer_image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.Operation,
		e.ProjectKey,
		int64(e.DeploymentID),
		e.Commit,
		e.Type,
		e.QueryImage,
		e.IndexerImage,
		e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record operation: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, operation, project_key, deployment_id, commit_sha,
		deployment_type, query_image, indexer_image, created_at
		FROM operations WHERE 1=1`)
	args := []any{}

	if f.ProjectKey != "" {
		sb.WriteString(" AND project_key = ?")
		args = append(args, f.ProjectKey)
	}
	if f.Operation != "" {
		sb.WriteString(" AND operation = ?")
		args = append(args, f.Operation)
	}
	sb.WriteString(" ORDER BY created_at DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var deploymentID int64
		var commit, depType, queryImage, indexerImage sql.NullString
		if err := rows.Scan(&e.ID, &e.Operation, &e.ProjectKey, &deploymentID, &commit,
			&depType, &queryImage, &indexerImage, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		e.DeploymentID = uint64(deploymentID)
		e.Commit = commit.String
		e.Type = depType.String
		e.QueryImage = queryImage.String
		e.IndexerImage = indexerImage.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read operations: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the cutoff and reports how many went.
func (j *Journal) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, "DELETE FROM operations WHERE created_at < ?", olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune operations: %w", err)
	}
	return res.RowsAffected()
}
