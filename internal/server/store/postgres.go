package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fileconsole/internal/model"
)

const filesSchema = `
CREATE TABLE IF NOT EXISTS files (
	id              TEXT PRIMARY KEY,
	key             TEXT NOT NULL,
	original_name   TEXT NOT NULL,
	size_bytes      BIGINT NOT NULL,
	content_type    TEXT NOT NULL,
	checksum        TEXT NOT NULL,
	tags            TEXT[] NOT NULL DEFAULT '{}',
	created_at      TIMESTAMPTZ NOT NULL,
	deleted_at      TIMESTAMPTZ,
	version         INT,
	created_by      TEXT NOT NULL DEFAULT '',
	content         BYTEA NOT NULL
);
CREATE INDEX IF NOT EXISTS files_created_at_idx ON files (created_at DESC);
`

// Postgres stores files in a single table with the content inline. Fine
// for a dev server; a production system would keep content in object
// storage.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string, maxConns int32, minConns int32) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, filesSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure files schema: %w", err)
	}

	slog.Info("database connected", "max_conns", maxConns, "min_conns", minConns)
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Create(ctx context.Context, meta model.StoredFile, content []byte) error {
	if meta.Tags == nil {
		meta.Tags = model.Tags{}
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO files (id, key, original_name, size_bytes, content_type, checksum, tags, created_at, deleted_at, version, created_by, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		meta.ID, meta.Key, meta.OriginalName, meta.SizeBytes, meta.ContentType, meta.Checksum,
		[]string(meta.Tags), meta.CreatedAtUTC, meta.DeletedAtUTC, meta.Version, meta.CreatedByUserID, content,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, q ListQuery) ([]model.StoredFile, int, error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}

	addArg := func(clause string, value any) {
		args = append(args, value)
		where = append(where, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args))))
	}

	if q.Name != "" {
		addArg("original_name ILIKE '%' || ? || '%'", q.Name)
	}
	if q.Tag != "" {
		addArg("EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE '%' || ? || '%')", q.Tag)
	}
	if q.ContentType != "" {
		addArg("content_type LIKE '%' || ? || '%'", q.ContentType)
	}
	if !q.StartDate.IsZero() {
		addArg("created_at >= ?", q.StartDate)
	}
	if !q.EndDate.IsZero() {
		addArg("created_at <= ?", q.EndDate)
	}

	condition := strings.Join(where, " AND ")

	var total int
	if err := p.pool.QueryRow(ctx, "SELECT count(*) FROM files WHERE "+condition, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count files: %w", err)
	}

	query := "SELECT " + fileColumns + " FROM files WHERE " + condition + " ORDER BY created_at DESC, id"
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		args = append(args, q.PageSize)
		query += " LIMIT $" + strconv.Itoa(len(args))
		args = append(args, (page-1)*q.PageSize)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := []model.StoredFile{}
	for rows.Next() {
		file, scanErr := scanFile(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate files: %w", err)
	}

	return files, total, nil
}

const fileColumns = "id, key, original_name, size_bytes, content_type, checksum, tags, created_at, deleted_at, version, created_by"

func scanFile(row pgx.Row) (model.StoredFile, error) {
	var (
		file model.StoredFile
		tags []string
	)
	err := row.Scan(&file.ID, &file.Key, &file.OriginalName, &file.SizeBytes, &file.ContentType,
		&file.Checksum, &tags, &file.CreatedAtUTC, &file.DeletedAtUTC, &file.Version, &file.CreatedByUserID)
	if err != nil {
		return model.StoredFile{}, fmt.Errorf("scan file: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	file.Tags = tags
	return file, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (model.StoredFile, error) {
	row := p.pool.QueryRow(ctx, "SELECT "+fileColumns+" FROM files WHERE id = $1", id)
	file, err := scanFile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.StoredFile{}, model.ErrFileNotFound
		}
		return model.StoredFile{}, err
	}
	return file, nil
}

func (p *Postgres) Content(ctx context.Context, id string) (model.StoredFile, []byte, error) {
	file, err := p.Get(ctx, id)
	if err != nil {
		return model.StoredFile{}, nil, err
	}

	var content []byte
	if err := p.pool.QueryRow(ctx, "SELECT content FROM files WHERE id = $1", id).Scan(&content); err != nil {
		return model.StoredFile{}, nil, fmt.Errorf("read content: %w", err)
	}
	return file, content, nil
}

func (p *Postgres) SoftDelete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, "UPDATE files SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return p.ensureExists(ctx, id)
	}
	return nil
}

func (p *Postgres) HardDelete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM files WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("hard delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrFileNotFound
	}
	return nil
}

// ensureExists distinguishes "already soft-deleted" (a no-op) from a
// missing id.
func (p *Postgres) ensureExists(ctx context.Context, id string) error {
	var exists bool
	if err := p.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM files WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("check file: %w", err)
	}
	if !exists {
		return model.ErrFileNotFound
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
