// Package storage define os contratos de persistência genérica do sistema:
// um armazém chave-valor e um armazém de documentos JSON. Os detalhes de
// persistência ficam restritos aos drivers (postgres, bolt, memory).
package storage

// PutOptions configura a escrita de uma chave
type PutOptions struct {
	// TTLSeconds, quando maior que zero, faz a chave expirar no nível do
	// armazém. Zero significa sem expiração.
	TTLSeconds int
}

// KVStore é um armazém chave-valor opaco. Get retorna found=false para
// chave ausente ou expirada; escrita é last-writer-wins, sem versão.
type KVStore interface {
	Get(key string) (value []byte, found bool, err error)
	Put(key string, value []byte, opts *PutOptions) error
	Delete(key string) error
	List(prefix string) ([]string, error)
}

// BlobStore é um armazém de documentos JSON agrupados por coleção
type BlobStore interface {
	Get(collection, id string) (doc []byte, found bool, err error)
	Put(collection, id string, doc []byte) error
	Delete(collection, id string) error
	List(collection string) ([]string, error)
}
