package aggregating

import (
	"errors"
	"fmt"
)

// Erros específicos do contexto de agregação
var (
	// ErrStorageUnavailable indica falha do repositório. É fatal para a
	// chamada de ingest/query que o encontrou; a política de retry pertence
	// ao chamador, não ao serviço.
	ErrStorageUnavailable = errors.New("armazenamento indisponível")
)

// StorageError é um erro de armazenamento com contexto adicional
type StorageError struct {
	Err     error  // Erro base (sentinela)
	Op      string // Operação em andamento ("ingest", "query")
	Cause   error  // Erro original do repositório
	BatchID string // Lote envolvido (quando aplicável)
}

// Error implementa a interface error
func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s", e.Err.Error(), e.Op, e.Cause.Error())
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), e.Op)
}

// Unwrap retorna o erro sentinela, permitindo errors.Is(err, ErrStorageUnavailable)
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError cria um novo StorageError
func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{
		Err:   ErrStorageUnavailable,
		Op:    op,
		Cause: cause,
	}
}
