package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Counter names a monthly usage counter.
type Counter string

const (
	GeoAudits        Counter = "geo_audits"
	WebsiteAnalyses  Counter = "website_analyses"
	VisibilityChecks Counter = "visibility_checks"
	KeywordLookups   Counter = "keyword_lookups"
	FetchFailures    Counter = "fetch_failures"
	CacheHits        Counter = "cache_hits"
	CacheMisses      Counter = "cache_misses"
)

// MonthlyStats represents statistics for a specific month
type MonthlyStats struct {
	Counts      map[Counter]int `json:"counts"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Get returns the value of counter c.
func (m MonthlyStats) Get(c Counter) int {
	return m.Counts[c]
}

// Storage handles persistent storage of statistics
type Storage struct {
	mutex       sync.RWMutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	closeOnce   sync.Once
	logger      *slog.Logger
	now         func() time.Time
}

// NewStorage creates a new statistics storage instance
func NewStorage(dataDir string, logger *slog.Logger) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		logger:      logger,
		now:         time.Now,
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

// save writes statistics to a temporary file and renames it into place.
func (s *Storage) save() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

func (s *Storage) backgroundWriter() {
	defer close(s.stopped)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
		case <-ticker.C:
		case <-s.done:
			if err := s.save(); err != nil {
				s.logger.Error("final stats write failed", "error", err)
			}
			return
		}
		if err := s.save(); err != nil {
			s.logger.Warn("stats write failed", "error", err)
		}
	}
}

func (s *Storage) currentMonth() string {
	return s.now().Format("2006-01")
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// write already pending
	}
}

// Increment adds n to counter c for the current month.
func (s *Storage) Increment(c Counter, n int) {
	month := s.currentMonth()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{Counts: make(map[Counter]int)}
		s.stats[month] = stats
	}
	if stats.Counts == nil {
		stats.Counts = make(map[Counter]int)
	}
	stats.Counts[c] += n
	stats.LastUpdated = s.now()

	if time.Since(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = time.Now()
	}
}

func copyStats(m *MonthlyStats) MonthlyStats {
	out := MonthlyStats{Counts: make(map[Counter]int, len(m.Counts)), LastUpdated: m.LastUpdated}
	for k, v := range m.Counts {
		out.Counts[k] = v
	}
	return out
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	stats, _ := s.GetMonthlyStats(s.currentMonth())
	return stats
}

// GetMonthlyStats returns statistics for a specific month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return copyStats(stats), true
	}
	return MonthlyStats{Counts: map[Counter]int{}}, false
}

// Cleanup keeps the current month plus the previous retainMonths months.
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 0 {
		retainMonths = 0
	}
	now := s.now()
	keep := make(map[string]struct{}, retainMonths+1)
	for i := 0; i <= retainMonths; i++ {
		keep[now.AddDate(0, -i, 0).Format("2006-01")] = struct{}{}
	}

	s.mutex.Lock()
	for key := range s.stats {
		if _, ok := keep[key]; !ok {
			delete(s.stats, key)
		}
	}
	s.mutex.Unlock()

	s.requestWrite()
	s.logger.Debug("retained monthly statistics", "months", retainMonths+1)
}

// GetAllMonths returns all months that have statistics, newest first.
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// Flush writes the statistics to disk immediately.
func (s *Storage) Flush() error {
	return s.save()
}

// Shutdown stops the background writer after a final write.
func (s *Storage) Shutdown() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		close(s.done)
	})
	<-s.stopped
	return nil
}
