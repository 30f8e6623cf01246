package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placementportal/internal/db"
	"github.com/yigit/placementportal/internal/pkg/dberrors"
)

const documentsTable = "documents"

// PostgresStore keeps every collection in a single JSONB table.
type PostgresStore struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewPostgresStore creates a store on top of an open connection pool.
func NewPostgresStore(database *db.PostgresDB) *PostgresStore {
	return &PostgresStore{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (s *PostgresStore) Create(ctx context.Context, collection, id string, doc interface{}) (string, error) {
	fields, err := ToFields(doc)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	if id == "" {
		id = uuid.NewString()
	}

	sql, args, err := s.sb.Insert(documentsTable).
		Columns("collection", "id", "data").
		Values(collection, id, squirrel.Expr("?::jsonb", string(raw))).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build create document query: %w", err)
	}

	if _, err := s.db.Pool.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return "", fmt.Errorf("%w: %s/%s", ErrAlreadyExists, collection, id)
		}
		return "", unavailable("create document", err)
	}
	return id, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	sql, args, err := s.sb.Select("id", "data").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get document query: %w", err)
	}

	var doc Document
	var data []byte
	err = s.db.Pool.QueryRow(ctx, sql, args...).Scan(&doc.ID, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return nil, unavailable("get document", err)
	}
	doc.Data = data
	return &doc, nil
}

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	return s.query(ctx, s.sb.Select("id", "data").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("created_at ASC", "id ASC"))
}

func (s *PostgresStore) FindBy(ctx context.Context, collection, field, value string) ([]Document, error) {
	return s.query(ctx, s.sb.Select("id", "data").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		Where(squirrel.Expr("data->>(?::text) = ?", field, value)).
		OrderBy("created_at ASC", "id ASC"))
}

func (s *PostgresStore) query(ctx context.Context, builder squirrel.SelectBuilder) ([]Document, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list documents query: %w", err)
	}

	rows, err := s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, unavailable("list documents", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc Document
		var data []byte
		if err := rows.Scan(&doc.ID, &data); err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		doc.Data = data
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list documents", err)
	}
	return docs, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	sql, args, err := s.sb.Update(documentsTable).
		Set("data", squirrel.Expr("data || ?::jsonb", string(raw))).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update document query: %w", err)
	}

	tag, err := s.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return unavailable("update document", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	sql, args, err := s.sb.Delete(documentsTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete document query: %w", err)
	}

	tag, err := s.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return unavailable("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

// AddToSet locks the row, checks the exclusive sets and appends value in one
// transaction.
func (s *PostgresStore) AddToSet(ctx context.Context, collection, id, field, value string, exclusive ...string) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var data []byte
		err := tx.QueryRow(ctx,
			`SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
			collection, id).Scan(&data)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
			}
			return unavailable("lock document", err)
		}

		fields := map[string]interface{}{}
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("decode %s: %w", id, err)
		}
		done, err := checkSetMembership(fields, field, value, exclusive)
		if err != nil || done {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE documents
			SET data = jsonb_set(data, ARRAY[$3::text],
			        CASE WHEN jsonb_typeof(data->($3::text)) = 'array'
			             THEN data->($3::text) ELSE '[]'::jsonb END
			        || jsonb_build_array($4::text)),
			    updated_at = NOW()
			WHERE collection = $1 AND id = $2`,
			collection, id, field, value)
		if err != nil {
			return unavailable("add to set", err)
		}
		return nil
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
