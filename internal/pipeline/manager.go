package pipeline

import (
	"context"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"larder/internal/config"
	"larder/internal/logging"
	"larder/internal/notifications"
	"larder/internal/queue"
	"larder/internal/recipe"
	"larder/internal/services"
	"larder/internal/throttle"
)

// Stage progress checkpoints. Progress only moves forward; a terminal item
// always reads 100.
const (
	progressUploading = 10
	progressUploaded  = 40
	progressAnalyzing = 50
	progressAnalyzed  = 70
	progressStoring   = 80
)

// StorageService uploads photo bytes and reports the public URL.
type StorageService interface {
	Upload(ctx context.Context, data []byte, contentType, suggestedName string) (string, error)
}

// VisionService transcribes an uploaded photo into labeled-section text.
type VisionService interface {
	Analyze(ctx context.Context, photoURL string) (string, error)
}

// RecordStore persists a structured record and returns it with an assigned id.
type RecordStore interface {
	Persist(ctx context.Context, rec recipe.Record) (recipe.Record, error)
}

// Summary reports the outcome of one batch drain.
type Summary struct {
	Processed int
	Failed    int
	Duration  time.Duration
}

// Manager owns the item state store and walks each queued item through the
// pipeline stages. External calls all pass through the serializer so the
// batch observes the configured spacing between API requests.
type Manager struct {
	store      *queue.Store
	serializer *throttle.Serializer
	logger     *slog.Logger
	notifier   notifications.Service

	mu      sync.RWMutex
	storage StorageService
	vision  VisionService
	records RecordStore

	readFile func(string) ([]byte, error)
}

// NewManager constructs a manager with no collaborators bound yet. Call
// Reconfigure before submitting a batch.
func NewManager(store *queue.Store, serializer *throttle.Serializer, logger *slog.Logger, notifier notifications.Service) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(config.Notifications{})
	}
	return &Manager{
		store:      store,
		serializer: serializer,
		logger:     logger.With(logging.String("component", "pipeline")),
		notifier:   notifier,
		readFile:   os.ReadFile,
	}
}

// Reconfigure swaps the bound collaborators. Safe to call between items; the
// stage currently in flight keeps the clients it started with.
func (m *Manager) Reconfigure(storage StorageService, vision VisionService, records RecordStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storage = storage
	m.vision = vision
	m.records = records
}

// Ready reports whether all three collaborators are bound.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.storage != nil && m.vision != nil && m.records != nil
}

// Store exposes the item state store for status rendering.
func (m *Manager) Store() *queue.Store {
	return m.store
}

// SubmitBatch enqueues one item per path. When collaborators are missing the
// whole batch is rejected and nothing is enqueued.
func (m *Manager) SubmitBatch(ctx context.Context, paths []string) ([]queue.Item, error) {
	if !m.Ready() {
		return nil, services.Wrap(services.ErrConfiguration, "submit", "", "pipeline services not configured", nil)
	}
	if len(paths) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "submit", "", "no files provided", nil)
	}
	items := make([]queue.Item, 0, len(paths))
	for _, path := range paths {
		item := m.store.Add(filepath.Base(path), path)
		items = append(items, item)
		m.logger.Info("item queued",
			logging.String("item_id", item.ID),
			logging.String("file", item.FileName),
		)
	}
	return items, nil
}

// Drain processes queued items in submission order until none remain. Item
// failures are recorded on the item; Drain itself only fails when the context
// is canceled.
func (m *Manager) Drain(ctx context.Context) (Summary, error) {
	started := time.Now()
	summary := Summary{}

	if count := len(m.store.List(queue.StatusQueued)); count > 0 {
		if err := m.notifier.NotifyBatchStarted(ctx, count); err != nil {
			m.logger.Warn("batch start notification failed", logging.Error(err))
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		item, ok := m.store.NextQueued()
		if !ok {
			break
		}
		if m.processItem(ctx, item) {
			summary.Processed++
		} else {
			summary.Failed++
		}
		m.notifyCompletions(ctx)
	}

	summary.Duration = time.Since(started)
	if summary.Processed+summary.Failed > 0 {
		if err := m.notifier.NotifyBatchCompleted(ctx, summary.Processed, summary.Failed, summary.Duration); err != nil {
			m.logger.Warn("batch completion notification failed", logging.Error(err))
		}
	}
	return summary, nil
}

// processItem walks one item through every stage. It reports true when the
// item completed and false when it was marked failed.
func (m *Manager) processItem(ctx context.Context, item queue.Item) bool {
	m.mu.RLock()
	storage, vision, records := m.storage, m.vision, m.records
	m.mu.RUnlock()

	logger := m.logger.With(
		logging.String("item_id", item.ID),
		logging.String("file", item.FileName),
	)

	fail := func(stage string, err error) bool {
		message := services.Message(err)
		logger.Error("item failed",
			logging.String("stage", stage),
			logging.Error(err),
		)
		if storeErr := m.store.Fail(item.ID, message); storeErr != nil {
			logger.Error("could not record item failure", logging.Error(storeErr))
		}
		if notifyErr := m.notifier.NotifyItemFailed(ctx, item.FileName, message); notifyErr != nil {
			logger.Warn("failure notification failed", logging.Error(notifyErr))
		}
		return false
	}

	// Upload.
	if err := m.store.SetStatus(item.ID, queue.StatusUploading, progressUploading); err != nil {
		return fail("upload", err)
	}
	if storage == nil {
		return fail("upload", services.Wrap(services.ErrConfiguration, "upload", "", "storage service not configured", nil))
	}
	data, err := m.readFile(item.SourcePath)
	if err != nil {
		return fail("upload", services.Wrap(services.ErrConfiguration, "upload", "read file", item.SourcePath, err))
	}
	var photoURL string
	err = m.serializer.Do(ctx, func(ctx context.Context) error {
		var uploadErr error
		photoURL, uploadErr = storage.Upload(ctx, data, contentTypeFor(item.FileName), item.FileName)
		return uploadErr
	})
	if err != nil {
		return fail("upload", err)
	}
	if err := m.store.SetImageURL(item.ID, photoURL); err != nil {
		return fail("upload", err)
	}
	if err := m.store.SetProgress(item.ID, progressUploaded); err != nil {
		return fail("upload", err)
	}
	logger.Info("photo uploaded", logging.String("url", photoURL))

	// Analyze.
	if err := m.store.SetStatus(item.ID, queue.StatusAnalyzing, progressAnalyzing); err != nil {
		return fail("analyze", err)
	}
	if vision == nil {
		return fail("analyze", services.Wrap(services.ErrConfiguration, "analyze", "", "vision service not configured", nil))
	}
	var analysis string
	err = m.serializer.Do(ctx, func(ctx context.Context) error {
		var analyzeErr error
		analysis, analyzeErr = vision.Analyze(ctx, photoURL)
		return analyzeErr
	})
	if err != nil {
		return fail("analyze", err)
	}
	rec := recipe.Parse(analysis)
	rec.ImageURL = photoURL
	rec.CreatedAt = time.Now()
	if err := m.store.SetRecord(item.ID, rec); err != nil {
		return fail("analyze", err)
	}
	if err := m.store.SetProgress(item.ID, progressAnalyzed); err != nil {
		return fail("analyze", err)
	}
	logger.Info("photo analyzed", logging.String("recipe", rec.Name))

	// Store.
	if err := m.store.SetStatus(item.ID, queue.StatusStoring, progressStoring); err != nil {
		return fail("store", err)
	}
	if records == nil {
		return fail("store", services.Wrap(services.ErrConfiguration, "store", "", "record store not configured", nil))
	}
	var stored recipe.Record
	err = m.serializer.Do(ctx, func(ctx context.Context) error {
		var persistErr error
		stored, persistErr = records.Persist(ctx, rec)
		return persistErr
	})
	if err != nil {
		return fail("store", err)
	}
	if err := m.store.Complete(item.ID, stored); err != nil {
		return fail("store", err)
	}
	logger.Info("recipe stored",
		logging.String("recipe", stored.Name),
		logging.String("record_id", stored.PersistedID),
	)
	return true
}

// notifyCompletions pushes at most one completion notification per newly
// completed item, marking each as viewed so it is announced exactly once.
func (m *Manager) notifyCompletions(ctx context.Context) {
	for {
		item, ok := m.store.NextCompletedUnviewed()
		if !ok {
			return
		}
		if err := m.store.MarkViewed(item.ID); err != nil {
			m.logger.Warn("could not mark item viewed", logging.Error(err))
			return
		}
		name := recipe.DefaultName
		if item.Record != nil && item.Record.Name != "" {
			name = item.Record.Name
		}
		if err := m.notifier.NotifyItemCompleted(ctx, name); err != nil {
			m.logger.Warn("completion notification failed", logging.Error(err))
		}
	}
}

func contentTypeFor(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}
