// Package memory implementa os armazéns genéricos em memória, para
// desenvolvimento local e testes.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/buyclientuz-pixel/targetbot-sub000/infrastructure/storage"
)

type kvItem struct {
	value     []byte
	expiresAt *time.Time
}

// KVStore é um armazém chave-valor em memória, seguro para concorrência
type KVStore struct {
	mu    sync.RWMutex
	items map[string]kvItem
}

func NewKVStore() *KVStore {
	return &KVStore{items: make(map[string]kvItem)}
}

func (s *KVStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}

	if item.expiresAt != nil && item.expiresAt.Before(time.Now()) {
		return nil, false, nil
	}

	return append([]byte(nil), item.value...), true, nil
}

func (s *KVStore) Put(key string, value []byte, opts *storage.PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := kvItem{value: append([]byte(nil), value...)}
	if opts != nil && opts.TTLSeconds > 0 {
		expiresAt := time.Now().Add(time.Duration(opts.TTLSeconds) * time.Second)
		item.expiresAt = &expiresAt
	}

	s.items[key] = item
	return nil
}

func (s *KVStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

func (s *KVStore) List(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

// BlobStore é um armazém de documentos em memória
type BlobStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewBlobStore() *BlobStore {
	return &BlobStore{docs: make(map[string][]byte)}
}

func docKey(collection, id string) string {
	return collection + "/" + id
}

func (s *BlobStore) Get(collection, id string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[docKey(collection, id)]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), doc...), true, nil
}

func (s *BlobStore) Put(collection, id string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[docKey(collection, id)] = append([]byte(nil), doc...)
	return nil
}

func (s *BlobStore) Delete(collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, docKey(collection, id))
	return nil
}

func (s *BlobStore) List(collection string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := collection + "/"

	var ids []string
	for key := range s.docs {
		if strings.HasPrefix(key, prefix) {
			ids = append(ids, strings.TrimPrefix(key, prefix))
		}
	}

	sort.Strings(ids)
	return ids, nil
}
