package schema

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces client-side primary key values.
type IDGenerator interface {
	Generate() (any, error)
	Type() string
}

// UUIDGenerator generates UUID v4 values
type UUIDGenerator struct{}

func (g UUIDGenerator) Generate() (any, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id, nil
}

func (g UUIDGenerator) Type() string {
	return "uuid"
}

// ULIDGenerator generates monotonic ULID values. Safe for concurrent use.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) Generate() (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id, nil
}

func (g *ULIDGenerator) Type() string {
	return "ulid"
}

// GeneratorRegistry maps generator names used in db tags to generators.
type GeneratorRegistry struct {
	mu         sync.RWMutex
	generators map[string]IDGenerator
}

var defaultGenerators = NewGeneratorRegistry()

func NewGeneratorRegistry() *GeneratorRegistry {
	registry := &GeneratorRegistry{
		generators: make(map[string]IDGenerator),
	}
	registry.Register("uuid", UUIDGenerator{})
	registry.Register("ulid", NewULIDGenerator())
	return registry
}

func (r *GeneratorRegistry) Register(name string, generator IDGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = generator
}

func (r *GeneratorRegistry) Get(name string) (IDGenerator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[name]
	return gen, ok
}

func (r *GeneratorRegistry) Generate(generatorType string) (any, error) {
	gen, ok := r.Get(generatorType)
	if !ok {
		return nil, fmt.Errorf("unknown generator type: %s", generatorType)
	}
	return gen.Generate()
}

// RegisterGenerator makes generator available to db tags as generator:name.
// Register before the first lookup of any type using it.
func RegisterGenerator(name string, generator IDGenerator) {
	defaultGenerators.Register(name, generator)
}

func GenerateID(generatorType string) (any, error) {
	return defaultGenerators.Generate(generatorType)
}
