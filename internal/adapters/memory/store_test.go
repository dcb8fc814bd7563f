package memory_test

import (
	"testing"

	"github.com/aretw0/gantry/internal/adapters/memory"
	"github.com/aretw0/gantry/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStoreContract(t, memory.New())
}

func TestMemoryLogStore_Contract(t *testing.T) {
	ports.LogStoreContract(t, memory.NewLogStore())
}
