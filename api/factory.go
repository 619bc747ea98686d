package api

import (
	"fmt"
	"sort"
	"sync"

	"github.com/skyvolt/fleetmon/model"
)

// Factory builds a brand adapter bound to one credential.
type Factory func(credential *model.Credential) BrandAdapter

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register installs a factory under a brand code. Vendor packages call this
// from init; a duplicate code is a programming error.
func Register(brandCode string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[brandCode]; exists {
		panic(fmt.Sprintf("brand adapter %q registered twice", brandCode))
	}

	registry[brandCode] = factory
}

// NewAdapter resolves the credential's brand code to a bound adapter.
func NewAdapter(credential *model.Credential) (BrandAdapter, error) {
	registryMu.RLock()
	factory, ok := registry[credential.BrandCode]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no adapter registered for brand %q", credential.BrandCode)
	}

	return factory(credential), nil
}

// Brands lists the registered brand codes.
func Brands() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return codes
}
