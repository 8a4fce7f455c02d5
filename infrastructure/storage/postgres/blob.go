package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
)

const blobTable = "blob_documents"

type blobStore struct {
	conn *Connection
}

// NewBlobStore cria um armazém de documentos JSON sobre o Postgres
func NewBlobStore(conn *Connection) storage.BlobStore {
	return &blobStore{conn: conn}
}

func (s *blobStore) Get(collection, id string) ([]byte, bool, error) {
	query, args, err := squirrel.
		Select("document").
		From(blobTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var doc []byte
	row := s.conn.QueryRow(query, args...)
	if err := row.Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("erro ao escanear documento: %w", err)
	}

	return doc, true, nil
}

func (s *blobStore) Put(collection, id string, doc []byte) error {
	query, args, err := squirrel.
		Insert(blobTable).
		Columns("collection", "id", "document", "updated_at").
		Values(collection, id, doc, time.Now()).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := s.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao gravar documento: %w", err)
	}

	return nil
}

func (s *blobStore) Delete(collection, id string) error {
	query, args, err := squirrel.
		Delete(blobTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := s.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao remover documento: %w", err)
	}

	return nil
}

func (s *blobStore) List(collection string) ([]string, error) {
	query, args, err := squirrel.
		Select("id").
		From(blobTable).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar documentos: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("erro ao escanear id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
