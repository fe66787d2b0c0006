package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hailam/rankwar/internal/board"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	prefixMatch    = "match/"
)

// UserPreferences stores user settings
type UserPreferences struct {
	RedName      string    `json:"red_name"`
	BlueName     string    `json:"blue_name"`
	SoundEnabled bool      `json:"sound_enabled"`
	ShowTargets  bool      `json:"show_targets"`
	LastPlayed   time.Time `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		RedName:      "Red",
		BlueName:     "Blue",
		SoundEnabled: true,
		ShowTargets:  true,
		LastPlayed:   time.Now(),
	}
}

// PlayerName returns the configured name for c.
func (p *UserPreferences) PlayerName(c board.Color) string {
	if c == board.Blue {
		return p.BlueName
	}
	return p.RedName
}

// GameStats stores results across finished games
type GameStats struct {
	GamesPlayed   int           `json:"games_played"`
	RedWins       int           `json:"red_wins"`
	BlueWins      int           `json:"blue_wins"`
	TotalTurns    int           `json:"total_turns"`
	LongestGame   int           `json:"longest_game"`
	TotalPlayTime time.Duration `json:"total_play_time"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{}
}

// WinRate returns c's share of finished games as a percentage (0-100).
func (s *GameStats) WinRate(c board.Color) float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	wins := s.RedWins
	if c == board.Blue {
		wins = s.BlueWins
	}
	return float64(wins) / float64(s.GamesPlayed) * 100
}

// AverageTurns returns the mean game length in turns.
func (s *GameStats) AverageTurns() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalTurns) / float64(s.GamesPlayed)
}

// Apply folds one finished match into the totals.
func (s *GameStats) Apply(m MatchRecord) {
	s.GamesPlayed++
	switch m.Winner {
	case board.Red:
		s.RedWins++
	case board.Blue:
		s.BlueWins++
	}
	s.TotalTurns += m.Turns
	if m.Turns > s.LongestGame {
		s.LongestGame = m.Turns
	}
	s.TotalPlayTime += m.Duration
}

// MatchRecord is the result of one finished game
type MatchRecord struct {
	ID       uuid.UUID     `json:"id"`
	Winner   board.Color   `json:"winner"`
	Turns    int           `json:"turns"`
	Duration time.Duration `json:"duration"`
	EndedAt  time.Time     `json:"ended_at"`
}

// key orders records by end time.
func (m MatchRecord) key() []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", prefixMatch, m.EndedAt.UnixNano(), m.ID))
}

// Option configures Open.
type Option func(*badger.Options)

// WithLogger routes badger's internal logging to log.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *badger.Options) {
		if log != nil {
			o.Logger = badgerLogger{log}
		}
	}
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage(opts ...Option) (*Storage, error) {
	dbDir, err := GetDatabaseDir("")
	if err != nil {
		return nil, err
	}
	return Open(dbDir, opts...)
}

// Open opens (or creates) the database in dir.
func Open(dir string, opts ...Option) (*Storage, error) {
	bo := badger.DefaultOptions(dir)
	bo.Logger = nil // Disable logging unless asked
	for _, opt := range opts {
		opt(&bo)
	}
	return open(bo)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory(opts ...Option) (*Storage, error) {
	bo := badger.DefaultOptions("").WithInMemory(true)
	bo.Logger = nil
	for _, opt := range opts {
		opt(&bo)
	}
	return open(bo)
}

func open(bo badger.Options) (*Storage, error) {
	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// getJSON decodes key into v. It reports false when the key is absent.
func getJSON(txn *badger.Txn, key []byte, v any) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, []byte(keyPreferences), prefs)
	})
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, []byte(keyPreferences), prefs)
		return err
	})
	return prefs, err
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, []byte(keyStats), stats)
		return err
	})
	return stats, err
}

// RecordMatch stores a finished match and updates the statistics in the
// same transaction. A zero ID or EndedAt is filled in.
func (s *Storage) RecordMatch(m MatchRecord) (MatchRecord, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.EndedAt.IsZero() {
		m.EndedAt = time.Now()
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		stats := NewGameStats()
		if _, err := getJSON(txn, []byte(keyStats), stats); err != nil {
			return err
		}
		stats.Apply(m)
		if err := setJSON(txn, []byte(keyStats), stats); err != nil {
			return err
		}
		return setJSON(txn, m.key(), m)
	})
	return m, err
}

// RecordResult records a finished game identified by gameID, as reported
// by the engine's game-over event. An unparsable gameID gets a fresh ID.
func (s *Storage) RecordResult(gameID string, winner board.Color, turns int, d time.Duration) (MatchRecord, error) {
	m := MatchRecord{Winner: winner, Turns: turns, Duration: d}
	if id, err := uuid.Parse(gameID); err == nil {
		m.ID = id
	}
	return s.RecordMatch(m)
}

// ListMatches returns up to limit records, most recent first. A limit of
// zero or less returns all of them.
func (s *Storage) ListMatches(limit int) ([]MatchRecord, error) {
	var out []MatchRecord
	prefix := []byte(prefixMatch)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var m MatchRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return err
			}
			out = append(out, m)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}
