// Package progress persists per-theme, per-level results and player settings.
// All reads and writes go through a single save record stored under one key
// in an injected key-value collaborator. Persistence failures are logged and
// swallowed so gameplay never stops over a lost write.
package progress

import (
	"encoding/json"
	"log"
	"time"

	"spellstar/internal/models"
)

// SaveKey is the single key the whole save record lives under
const SaveKey = "spellstar_progress"

// KeyValue is the persistence collaborator the store writes through
type KeyValue interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// LevelPatch is a partial update to a level's progress. Nil fields are
// left unchanged; set fields overwrite.
type LevelPatch struct {
	Completed   *bool
	Score       *int
	Stars       *int
	WordsHelped []string
}

// SettingsPatch is a partial update to player settings
type SettingsPatch struct {
	SoundEnabled  *bool
	SpeechEnabled *bool
	SpeechRate    *float64
	PINHash       *string
}

// Store loads and saves a player's progress record
type Store struct {
	kv  KeyValue
	key string
	now func() time.Time
}

// NewStore creates a progress store over a key-value collaborator
func NewStore(kv KeyValue) *Store {
	return &Store{kv: kv, key: SaveKey, now: time.Now}
}

// NewStoreForKey creates a progress store under a custom save key,
// used when several players share one backing database
func NewStoreForKey(kv KeyValue, key string) *Store {
	return &Store{kv: kv, key: key, now: time.Now}
}

// Load returns the saved record, or a fresh default record when nothing is
// stored or the stored value cannot be parsed. Corrupt data is treated as
// no data, never as a fatal error.
func (s *Store) Load() *models.SavedProgress {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		log.Printf("Failed to read saved progress, starting fresh: %v", err)
		return models.NewSavedProgress()
	}
	if !ok {
		return models.NewSavedProgress()
	}

	var saved models.SavedProgress
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		log.Printf("Saved progress is corrupt, starting fresh: %v", err)
		return models.NewSavedProgress()
	}

	return s.migrate(&saved, []byte(raw))
}

// migrate reconciles an out-of-date record with the current schema by
// merging the old fields over fresh defaults. Settings are re-decoded
// through pointer fields so an explicit false survives and only fields
// absent from the old record fall back to defaults.
func (s *Store) migrate(saved *models.SavedProgress, raw []byte) *models.SavedProgress {
	if saved.Version == models.SaveVersion {
		if saved.Themes == nil {
			saved.Themes = make(map[string]*models.ThemeProgress)
		}
		return saved
	}

	log.Printf("Migrating save record from version %d to %d", saved.Version, models.SaveVersion)
	fresh := models.NewSavedProgress()
	if saved.Themes != nil {
		fresh.Themes = saved.Themes
	}

	var legacy struct {
		Settings struct {
			SoundEnabled  *bool    `json:"soundEnabled"`
			SpeechEnabled *bool    `json:"speechEnabled"`
			SpeechRate    *float64 `json:"speechRate"`
			PINHash       *string  `json:"pinHash"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(raw, &legacy); err == nil {
		if legacy.Settings.SoundEnabled != nil {
			fresh.Settings.SoundEnabled = *legacy.Settings.SoundEnabled
		}
		if legacy.Settings.SpeechEnabled != nil {
			fresh.Settings.SpeechEnabled = *legacy.Settings.SpeechEnabled
		}
		if legacy.Settings.SpeechRate != nil && *legacy.Settings.SpeechRate > 0 {
			fresh.Settings.SpeechRate = *legacy.Settings.SpeechRate
		}
		if legacy.Settings.PINHash != nil {
			fresh.Settings.PINHash = *legacy.Settings.PINHash
		}
	}

	fresh.LastPlayed = saved.LastPlayed
	return fresh
}

// Save stamps the record's lastPlayed time and writes it out. A write
// failure is logged and swallowed; the session continues with in-memory
// state and loses only this write.
func (s *Store) Save(saved *models.SavedProgress) {
	saved.Version = models.SaveVersion
	saved.LastPlayed = s.now().UTC().Format(time.RFC3339)

	raw, err := json.Marshal(saved)
	if err != nil {
		log.Printf("Failed to serialize progress: %v", err)
		return
	}

	if err := s.kv.Set(s.key, string(raw)); err != nil {
		log.Printf("Failed to save progress: %v", err)
	}
}

// UpdateLevelProgress merges a patch into one level's progress, recomputes
// the theme's total score from its level scores, and persists the whole
// record. Safe to call repeatedly with the same patch.
func (s *Store) UpdateLevelProgress(themeID string, level int, patch LevelPatch) {
	saved := s.Load()
	lp := saved.LevelFor(themeID, level)

	if patch.Completed != nil {
		lp.Completed = *patch.Completed
	}
	if patch.Score != nil {
		lp.Score = *patch.Score
	}
	if patch.Stars != nil {
		lp.Stars = *patch.Stars
	}
	if patch.WordsHelped != nil {
		lp.WordsHelped = patch.WordsHelped
	}

	tp := saved.ThemeFor(themeID)
	if level > tp.CurrentLevel {
		tp.CurrentLevel = level
	}
	tp.RecomputeTotalScore()

	s.Save(saved)
}

// UpdateSettings merges a patch into player settings and persists
func (s *Store) UpdateSettings(patch SettingsPatch) {
	saved := s.Load()

	if patch.SoundEnabled != nil {
		saved.Settings.SoundEnabled = *patch.SoundEnabled
	}
	if patch.SpeechEnabled != nil {
		saved.Settings.SpeechEnabled = *patch.SpeechEnabled
	}
	if patch.SpeechRate != nil {
		saved.Settings.SpeechRate = *patch.SpeechRate
	}
	if patch.PINHash != nil {
		saved.Settings.PINHash = *patch.PINHash
	}

	s.Save(saved)
}

// LevelProgressFor returns the stored progress for a theme's level, or nil
// when none has been recorded
func (s *Store) LevelProgressFor(themeID string, level int) *models.LevelProgress {
	saved := s.Load()
	tp, ok := saved.Themes[themeID]
	if !ok || tp.Levels == nil {
		return nil
	}
	return tp.Levels[level]
}

// IsLevelUnlocked reports whether a level may be played. Level 1 is always
// unlocked. A later level unlocks once the previous level has at least one
// star; before any progress exists the first two levels are free.
func (s *Store) IsLevelUnlocked(themeID string, level int) bool {
	if level <= 1 {
		return true
	}

	saved := s.Load()
	tp, ok := saved.Themes[themeID]
	if !ok || len(tp.Levels) == 0 {
		return level <= 2
	}

	prev, ok := tp.Levels[level-1]
	return ok && prev.Stars >= 1
}

// Clear removes all persisted state
func (s *Store) Clear() {
	if err := s.kv.Remove(s.key); err != nil {
		log.Printf("Failed to clear saved progress: %v", err)
	}
}
