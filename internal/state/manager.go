// Package state implements the persistent project state layer: per-chapter
// state documents, the project-wide aggregate, preferences, and the
// operations that mutate them. All documents live under a single state
// directory and are written atomically through internal/statefile.
package state

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"galley/internal/book"
	"galley/internal/bookcfg"
	"galley/internal/logging"
	"galley/internal/statefile"
)

const (
	bookConfigFile  = "book-config.json"
	projectFile     = "project.json"
	preferencesFile = "preferences.json"
	chaptersDirName = "chapters"
)

// Manager owns every state document for one project. A single Manager is
// assumed to be the only writer for its state directory; callers serialize
// cross-process access externally.
type Manager struct {
	stateDir    string
	chaptersDir string
	store       *statefile.Store
	logger      *slog.Logger

	mu          sync.Mutex
	initialized bool
	bookCfg     *bookcfg.Config
	project     *book.ProjectState
	prefs       *book.Preferences
	chapters    map[string]*book.ChapterState
}

// NewManager returns an uninitialized manager rooted at stateDir.
func NewManager(stateDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		stateDir:    stateDir,
		chaptersDir: filepath.Join(stateDir, chaptersDirName),
		store:       statefile.NewStore(logger),
		logger:      logger,
		chapters:    make(map[string]*book.ChapterState),
	}
}

// StateDir returns the state directory root.
func (m *Manager) StateDir() string {
	return m.stateDir
}

// BookConfig returns the loaded book configuration handle.
func (m *Manager) BookConfig() *bookcfg.Config {
	return m.bookCfg
}

// Initialize creates the state directory layout, loads the book
// configuration, and loads or creates the project and preferences
// documents. It must succeed before any other Manager method is used.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := statefile.EnsureDir(m.chaptersDir); err != nil {
		return err
	}

	cfg := bookcfg.New(filepath.Join(m.stateDir, bookConfigFile), m.store)
	if err := cfg.Load(); err != nil {
		return err
	}
	m.bookCfg = cfg

	project, err := m.loadOrCreateProject()
	if err != nil {
		return err
	}
	m.project = project

	prefs, err := m.loadOrCreatePreferences()
	if err != nil {
		return err
	}
	m.prefs = prefs

	m.initialized = true
	m.logger.Info("state manager initialized",
		logging.String("state_dir", m.stateDir),
		logging.Int("chapters", len(project.Chapters)))
	return nil
}

func (m *Manager) ensureInitialized() error {
	if !m.initialized {
		return fmt.Errorf("%w: call Initialize first", ErrNotInitialized)
	}
	return nil
}

func (m *Manager) loadOrCreateProject() (*book.ProjectState, error) {
	path := m.projectPath()
	data, err := m.store.Read(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		project, err := m.defaultProject()
		if err != nil {
			return nil, err
		}
		if err := m.writeProject(project); err != nil {
			return nil, err
		}
		m.logger.Info("created project state", logging.String("name", project.Name))
		return project, nil
	}
	project, err := decodeProject(data, path)
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (m *Manager) defaultProject() (*book.ProjectState, error) {
	title, err := m.bookCfg.Title()
	if err != nil {
		return nil, err
	}
	bookType, err := m.bookCfg.Type()
	if err != nil {
		return nil, err
	}
	genre, err := m.bookCfg.Genre()
	if err != nil {
		return nil, err
	}
	subgenre, err := m.bookCfg.Subgenre()
	if err != nil {
		return nil, err
	}
	now := m.now()
	return &book.ProjectState{
		Name:            title,
		Type:            bookType,
		Genre:           genre,
		Subgenre:        subgenre,
		StatusBreakdown: book.ZeroStatusBreakdown(),
		Chapters:        []string{},
		CreatedAt:       now,
		LastModified:    now,
	}, nil
}

func (m *Manager) loadOrCreatePreferences() (*book.Preferences, error) {
	path := m.preferencesPath()
	data, err := m.store.Read(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		prefs := book.DefaultPreferences()
		if err := m.store.Write(path, prefs); err != nil {
			return nil, err
		}
		return &prefs, nil
	}
	prefs, err := decodePreferences(data, path)
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

// ProjectState returns a copy of the current project aggregate.
func (m *Manager) ProjectState() (*book.ProjectState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	return m.project.Clone(), nil
}

// Preferences returns a copy of the current preferences.
func (m *Manager) Preferences() (book.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return book.Preferences{}, err
	}
	return *m.prefs, nil
}

// PreferencesUpdate describes a partial preferences change. Nil fields
// keep their current value.
type PreferencesUpdate struct {
	DefaultModel *string
	AutoSuggest  *bool
	CostLimit    *float64
	Verbose      *bool
}

// UpdatePreferences merges the update over the current preferences,
// validates, and persists the result.
func (m *Manager) UpdatePreferences(update PreferencesUpdate) (book.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureInitialized(); err != nil {
		return book.Preferences{}, err
	}

	merged := *m.prefs
	if update.DefaultModel != nil {
		merged.DefaultModel = *update.DefaultModel
	}
	if update.AutoSuggest != nil {
		merged.AutoSuggest = *update.AutoSuggest
	}
	if update.CostLimit != nil {
		merged.CostLimit = *update.CostLimit
	}
	if update.Verbose != nil {
		merged.Verbose = *update.Verbose
	}

	doc, err := book.Document(merged)
	if err != nil {
		return book.Preferences{}, err
	}
	path := m.preferencesPath()
	if violations := book.ValidatePreferences(doc); len(violations) > 0 {
		return book.Preferences{}, &book.ValidationError{Kind: "preferences", Path: path, Violations: violations}
	}
	if err := m.store.Write(path, merged); err != nil {
		return book.Preferences{}, err
	}
	m.prefs = &merged
	return merged, nil
}

func (m *Manager) projectPath() string {
	return filepath.Join(m.stateDir, projectFile)
}

func (m *Manager) preferencesPath() string {
	return filepath.Join(m.stateDir, preferencesFile)
}

func (m *Manager) chapterPath(name string) string {
	return filepath.Join(m.chaptersDir, name+".json")
}

func (m *Manager) writeProject(project *book.ProjectState) error {
	doc, err := book.Document(project)
	if err != nil {
		return err
	}
	path := m.projectPath()
	if violations := book.ValidateProjectState(doc); len(violations) > 0 {
		return &book.ValidationError{Kind: "project state", Path: path, Violations: violations}
	}
	return m.store.Write(path, project)
}
