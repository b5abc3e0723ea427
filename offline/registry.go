package offline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// manifestName is the installed-id list file. Persisting the list keeps
// startup from re-scanning every model file.
const manifestName = "installed_models.json"

// Registry tracks installed offline rule-models independently of the
// generic cache: models are larger, binary, and have their own
// install/uninstall lifecycle.
//
// On-disk layout under the models directory:
//
//	installed_models.json  - JSON list of installed model ids
//	<id>.bin               - raw model payload
//	<id>.json              - model metadata record
type Registry struct {
	dir    string
	logger *zap.Logger

	mu        sync.RWMutex
	installed map[string]struct{}
	loaded    map[string]*Model
}

// NewRegistry opens the models directory and loads the installed-id
// manifest. A missing or corrupt manifest starts the registry empty;
// it is rewritten on the next install.
func NewRegistry(dir string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	r := &Registry{
		dir:       dir,
		logger:    logger,
		installed: make(map[string]struct{}),
		loaded:    make(map[string]*Model),
	}

	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err == nil {
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			logger.Warn("ignoring corrupt model manifest", zap.Error(err))
		} else {
			for _, id := range ids {
				r.installed[id] = struct{}{}
			}
		}
	}
	return r, nil
}

// IsInstalled reports whether a model for the pair is in the persisted
// installed-set.
func (r *Registry) IsInstalled(sourceLang, targetLang string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.installed[ModelID(sourceLang, targetLang)]
	return ok
}

// Install persists the model payload and metadata, records the id in
// the installed-set, and caches the model for immediate use.
//
// Install is idempotent: installing an already-installed id succeeds
// without touching disk again. Installing a new version for the same
// pair requires an Uninstall first only if the id changed; same-id
// reinstalls are the no-op case.
func (r *Registry) Install(model Model, payload []byte) error {
	if model.ID == "" {
		model.ID = ModelID(model.SourceLanguage, model.TargetLanguage)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.installed[model.ID]; ok {
		return nil
	}

	if err := os.WriteFile(r.payloadPath(model.ID), payload, 0o644); err != nil {
		return &ModelLoadFailedError{ID: model.ID, Cause: err}
	}
	meta, err := json.Marshal(model)
	if err != nil {
		return &ModelLoadFailedError{ID: model.ID, Cause: err}
	}
	if err := os.WriteFile(r.metadataPath(model.ID), meta, 0o644); err != nil {
		return &ModelLoadFailedError{ID: model.ID, Cause: err}
	}

	r.installed[model.ID] = struct{}{}
	if err := r.persistManifestLocked(); err != nil {
		// Roll back so memory, manifest, and files agree: an install
		// that did not make the manifest did not happen.
		delete(r.installed, model.ID)
		os.Remove(r.payloadPath(model.ID))
		os.Remove(r.metadataPath(model.ID))
		return &ModelLoadFailedError{ID: model.ID, Cause: err}
	}
	r.loaded[model.ID] = &model

	r.logger.Info("offline model installed",
		zap.String("id", model.ID),
		zap.String("version", model.Version),
		zap.Int64("size_bytes", model.SizeBytes))
	return nil
}

// Uninstall removes the model for the pair from disk and from the
// installed-set. Returns ModelNotInstalledError if it is absent.
func (r *Registry) Uninstall(sourceLang, targetLang string) error {
	id := ModelID(sourceLang, targetLang)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.installed[id]; !ok {
		return &ModelNotInstalledError{SourceLang: sourceLang, TargetLang: targetLang}
	}

	if err := os.Remove(r.payloadPath(id)); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("failed to remove model payload", zap.String("id", id), zap.Error(err))
	}
	if err := os.Remove(r.metadataPath(id)); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("failed to remove model metadata", zap.String("id", id), zap.Error(err))
	}

	delete(r.installed, id)
	delete(r.loaded, id)
	if err := r.persistManifestLocked(); err != nil {
		return err
	}

	r.logger.Info("offline model uninstalled", zap.String("id", id))
	return nil
}

// Load returns the model for the pair, reading its metadata record from
// disk on first use.
func (r *Registry) Load(sourceLang, targetLang string) (*Model, error) {
	id := ModelID(sourceLang, targetLang)

	r.mu.RLock()
	_, installed := r.installed[id]
	model, cached := r.loaded[id]
	r.mu.RUnlock()

	if !installed {
		return nil, &ModelNotAvailableError{SourceLang: sourceLang, TargetLang: targetLang}
	}
	if cached {
		return model, nil
	}

	data, err := os.ReadFile(r.metadataPath(id))
	if err != nil {
		return nil, &ModelLoadFailedError{ID: id, Cause: err}
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ModelLoadFailedError{ID: id, Cause: err}
	}

	r.mu.Lock()
	r.loaded[id] = &m
	r.mu.Unlock()
	return &m, nil
}

// InstalledLanguages returns the sorted unique target languages with an
// installed model. Malformed ids are skipped.
func (r *Registry) InstalledLanguages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var langs []string
	for id := range r.installed {
		_, target, ok := ParseModelID(id)
		if !ok {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		langs = append(langs, target)
	}
	sort.Strings(langs)
	return langs
}

// InstalledPairs returns the sorted installed model ids.
func (r *Registry) InstalledPairs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.installed))
	for id := range r.installed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DiskUsage sums the model file sizes under the models directory.
// Returns 0 on enumeration failure.
func (r *Registry) DiskUsage() int64 {
	files, err := os.ReadDir(r.dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

func (r *Registry) persistManifestLocked() error {
	ids := make([]string, 0, len(r.installed))
	for id := range r.installed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.dir, manifestName), data, 0o644)
}

func (r *Registry) payloadPath(id string) string {
	return filepath.Join(r.dir, id+".bin")
}

func (r *Registry) metadataPath(id string) string {
	return filepath.Join(r.dir, id+".json")
}
