package directors

import (
	"errors"

	"diagramdb/src/engine"
	"diagramdb/src/models"

	"go.uber.org/zap"
)

// ConfigService stores the application config. It is overwritten wholesale, never merged.
type ConfigService struct {
	store   engine.DocumentStore
	journal engine.Recorder
	logger  *zap.SugaredLogger
}

func NewConfigService(store engine.DocumentStore, journal engine.Recorder, logger *zap.SugaredLogger) *ConfigService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ConfigService{store: store, journal: journal, logger: logger}
}

// GetConfig returns the stored config, or an empty document when none was ever saved.
func (s *ConfigService) GetConfig() (models.Document, error) {
	doc, err := s.store.Get(models.Config, models.ConfigKey)
	if errors.Is(err, engine.ErrNotFound) {
		return models.Document{}, nil
	}
	return doc, err
}

// SaveConfig replaces the config.
func (s *ConfigService) SaveConfig(doc models.Document) error {
	if _, err := s.store.Put(models.Config, models.ConfigKey, doc); err != nil {
		s.logger.Errorw("Failed to store config", "error", err)
		return err
	}
	if s.journal != nil {
		s.journal.Record(engine.JournalSave, string(models.Config), models.ConfigKey, "")
	}
	return nil
}

// FilterService stores one filter document per diagram id, overwritten wholesale.
type FilterService struct {
	store   engine.DocumentStore
	journal engine.Recorder
	logger  *zap.SugaredLogger
}

func NewFilterService(store engine.DocumentStore, journal engine.Recorder, logger *zap.SugaredLogger) *FilterService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FilterService{store: store, journal: journal, logger: logger}
}

func (s *FilterService) GetFilter(diagramID string) (models.Document, error) {
	return s.store.Get(models.DiagramFilters, diagramID)
}

func (s *FilterService) SaveFilter(diagramID string, filter models.Document) error {
	if _, err := s.store.Put(models.DiagramFilters, diagramID, filter); err != nil {
		s.logger.Errorw("Failed to store diagram filter", "id", diagramID, "error", err)
		return err
	}
	s.record(engine.JournalSave, diagramID)
	return nil
}

// DeleteFilter removes a filter. Deleting a filter that does not exist succeeds.
func (s *FilterService) DeleteFilter(diagramID string) error {
	if err := s.store.Delete(models.DiagramFilters, diagramID); err != nil {
		return err
	}
	s.record(engine.JournalDelete, diagramID)
	return nil
}

func (s *FilterService) record(command, diagramID string) {
	if s.journal != nil {
		s.journal.Record(command, string(models.DiagramFilters), diagramID, "")
	}
}
