package directors

import (
	"sync"

	"diagramdb/src/engine"

	"go.uber.org/zap"
)

type ServiceManager struct {
	DiagramService    *DiagramService
	CollectionService *CollectionService
	ConfigService     *ConfigService
	FilterService     *FilterService
	ArchiveService    *ArchiveService
	logger            *zap.SugaredLogger
}

// Private instance and mutex for thread safety
var (
	instance *ServiceManager
	once     sync.Once
	mu       sync.RWMutex
)

// NewServiceManager wires every service over one document store.
func NewServiceManager(store engine.DocumentStore, journal engine.Recorder, logger *zap.SugaredLogger) *ServiceManager {
	diagrams := NewDiagramService(store, journal, logger)
	return &ServiceManager{
		DiagramService:    diagrams,
		CollectionService: NewCollectionService(diagrams, engine.NewCollectionIndex(store), journal, logger),
		ConfigService:     NewConfigService(store, journal, logger),
		FilterService:     NewFilterService(store, journal, logger),
		ArchiveService:    NewArchiveService(store, journal, logger),
		logger:            logger,
	}
}

// GetServiceManager returns the singleton instance of ServiceManager, or nil before
// InitServiceManager has run.
func GetServiceManager() *ServiceManager {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// InitServiceManager initializes the ServiceManager singleton with services
func InitServiceManager(store engine.DocumentStore, journal engine.Recorder, logger *zap.SugaredLogger) *ServiceManager {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()

		instance = NewServiceManager(store, journal, logger)

		if logger != nil {
			logger.Info("ServiceManager singleton initialized")
		}
	})

	return GetServiceManager()
}

// ResetServiceManager is useful for testing - it resets the singleton
func ResetServiceManager() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}
