package logger

import (
	"sync"
)

// Component names used across dbprime.
const (
	ComponentFixture  = "fixture"
	ComponentDatabase = "database"
	ComponentGorm     = "gorm"
)

var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores a named logger in the registry.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get retrieves a named logger. Unregistered names get the global logger
// tagged with the requested component name.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults seeds the registry with the fixture, database and gorm
// component loggers derived from the global logger. Call it after Init.
func RegisterDefaults() {
	for _, name := range []string{ComponentFixture, ComponentDatabase, ComponentGorm} {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}

// Unregister removes a named logger.
func Unregister(name string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.loggers, name)
}
