package appstate

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderFactory builds a delegated strategy from configuration.
type ProviderFactory func(cfg Config) (Strategy, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider makes a delegated strategy available under a mode name.
// Provider packages call this from init; selecting the mode then only needs
// a blank import. Panics on duplicate registration.
func RegisterProvider(mode string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	if factory == nil {
		panic("appstate: RegisterProvider factory is nil")
	}
	if _, dup := providers[mode]; dup {
		panic("appstate: RegisterProvider called twice for mode " + mode)
	}
	providers[mode] = factory
}

// Providers returns the sorted names of the registered delegated strategies.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	list := make([]string, 0, len(providers))
	for mode := range providers {
		list = append(list, mode)
	}
	sort.Strings(list)
	return list
}

func providerFactory(mode string) (ProviderFactory, error) {
	providersMu.RLock()
	factory, ok := providers[mode]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("appstate: unknown auth mode %q (registered: %v)", mode, Providers())
	}
	return factory, nil
}
