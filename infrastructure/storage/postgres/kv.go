package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
)

const kvTable = "kv_entries"

type kvStore struct {
	conn *Connection
}

// NewKVStore cria um armazém chave-valor sobre o Postgres
func NewKVStore(conn *Connection) storage.KVStore {
	return &kvStore{conn: conn}
}

func (s *kvStore) Get(key string) ([]byte, bool, error) {
	query, args, err := squirrel.
		Select("value", "expires_at").
		From(kvTable).
		Where(squirrel.Eq{"key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var (
		value     []byte
		expiresAt sql.NullTime
	)

	row := s.conn.QueryRow(query, args...)
	if err := row.Scan(&value, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("erro ao escanear entrada: %w", err)
	}

	// Expiração no nível do armazém: chave vencida é tratada como ausente
	if expiresAt.Valid && expiresAt.Time.Before(time.Now()) {
		return nil, false, nil
	}

	return value, true, nil
}

func (s *kvStore) Put(key string, value []byte, opts *storage.PutOptions) error {
	var expiresAt any
	if opts != nil && opts.TTLSeconds > 0 {
		expiresAt = time.Now().Add(time.Duration(opts.TTLSeconds) * time.Second)
	}

	query, args, err := squirrel.
		Insert(kvTable).
		Columns("key", "value", "expires_at", "updated_at").
		Values(key, value, expiresAt, time.Now()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := s.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao gravar entrada: %w", err)
	}

	return nil
}

func (s *kvStore) Delete(key string) error {
	query, args, err := squirrel.
		Delete(kvTable).
		Where(squirrel.Eq{"key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := s.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao remover entrada: %w", err)
	}

	return nil
}

func (s *kvStore) List(prefix string) ([]string, error) {
	query, args, err := squirrel.
		Select("key").
		From(kvTable).
		Where(squirrel.Like{"key": prefix + "%"}).
		OrderBy("key ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar chaves: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("erro ao escanear chave: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}
