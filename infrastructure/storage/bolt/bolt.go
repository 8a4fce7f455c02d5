// Package bolt implementa os armazéns genéricos sobre um arquivo bbolt,
// para instalações sem Postgres disponível.
package bolt

import (
	"bytes"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bbolt "go.etcd.io/bbolt"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	kvBucket   = []byte("kv")
	blobBucket = []byte("blob")
)

type Store struct {
	db *bbolt.DB
}

// Open abre (ou cria) o arquivo de dados e garante os buckets
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao abrir arquivo bolt")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(kvBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(blobBucket)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar buckets")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// KV retorna a visão chave-valor do arquivo
func (s *Store) KV() storage.KVStore {
	return &kvStore{db: s.db}
}

// Blob retorna a visão de documentos do arquivo
func (s *Store) Blob() storage.BlobStore {
	return &blobStore{db: s.db}
}

// envelope embala o valor com a expiração, já que o bbolt não tem TTL nativo
type envelope struct {
	Value     []byte     `json:"v"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
}

type kvStore struct {
	db *bbolt.DB
}

func (s *kvStore) Get(key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(kvBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return errors.Wrap(err, "erro ao decodificar entrada")
		}

		if env.ExpiresAt != nil && env.ExpiresAt.Before(time.Now()) {
			return nil
		}

		value = append([]byte(nil), env.Value...)
		found = true
		return nil
	})

	return value, found, err
}

func (s *kvStore) Put(key string, value []byte, opts *storage.PutOptions) error {
	env := envelope{Value: value}
	if opts != nil && opts.TTLSeconds > 0 {
		expiresAt := time.Now().Add(time.Duration(opts.TTLSeconds) * time.Second)
		env.ExpiresAt = &expiresAt
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "erro ao codificar entrada")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(kvBucket).Put([]byte(key), raw)
	})
}

func (s *kvStore) Delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(kvBucket).Delete([]byte(key))
	})
}

func (s *kvStore) List(prefix string) ([]string, error) {
	var keys []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(kvBucket).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})

	return keys, err
}

type blobStore struct {
	db *bbolt.DB
}

// blobKey compõe a chave de documento dentro do bucket único de blobs
func blobKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

func (s *blobStore) Get(collection, id string) ([]byte, bool, error) {
	var (
		doc   []byte
		found bool
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(blobBucket).Get(blobKey(collection, id))
		if raw == nil {
			return nil
		}
		doc = append([]byte(nil), raw...)
		found = true
		return nil
	})

	return doc, found, err
}

func (s *blobStore) Put(collection, id string, doc []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blobBucket).Put(blobKey(collection, id), doc)
	})
}

func (s *blobStore) Delete(collection, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blobBucket).Delete(blobKey(collection, id))
	})
}

func (s *blobStore) List(collection string) ([]string, error) {
	var ids []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(blobBucket).Cursor()
		p := []byte(collection + "/")
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			ids = append(ids, string(k[len(p):]))
		}
		return nil
	})

	return ids, err
}
