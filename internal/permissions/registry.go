package permissions

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Definition describes an application permission registered by CRM modules.
// Codenames follow the "<module>.<action>_<resource>" convention, e.g.
// "leads.view_lead".
type Definition struct {
	Codename    string
	Module      string
	Description string
}

type registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

var globalRegistry = &registry{
	definitions: make(map[string]*Definition),
}

var (
	errNilDefinition  = errors.New("permission: nil definition")
	errEmptyCodename  = errors.New("permission: codename is required")
	errDuplicate      = errors.New("permission: already registered")
	errMissingDot     = errors.New("permission: codename must be namespaced with a dot")
)

// Register adds a permission definition to the global registry.
func Register(def *Definition) error {
	if def == nil {
		return errNilDefinition
	}

	codename := strings.TrimSpace(def.Codename)
	if codename == "" {
		return errEmptyCodename
	}
	if !strings.Contains(codename, ".") {
		return fmt.Errorf("%w: %s", errMissingDot, codename)
	}

	cp := *def
	cp.Codename = codename
	cp.Module = strings.TrimSpace(cp.Module)
	if cp.Module == "" {
		cp.Module = codename[:strings.Index(codename, ".")]
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.definitions[codename]; exists {
		return fmt.Errorf("%w: %s", errDuplicate, codename)
	}

	globalRegistry.definitions[codename] = &cp
	return nil
}

// Get returns a copy of the definition when registered.
func Get(codename string) (*Definition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	def, ok := globalRegistry.definitions[codename]
	if !ok {
		return nil, false
	}
	cp := *def
	return &cp, true
}

// GetAll returns a copy of all registered definitions keyed by codename.
func GetAll() map[string]*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make(map[string]*Definition, len(globalRegistry.definitions))
	for codename, def := range globalRegistry.definitions {
		cp := *def
		out[codename] = &cp
	}
	return out
}

// GetByModule gathers definitions registered under the specified module.
func GetByModule(module string) []*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	module = strings.TrimSpace(module)
	var defs []*Definition
	for _, def := range globalRegistry.definitions {
		if def.Module == module {
			cp := *def
			defs = append(defs, &cp)
		}
	}
	return defs
}

// removeDefinition clears a registry entry. Intended for testing only.
func removeDefinition(codename string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.definitions, codename)
}
