package models

// SaveVersion is the current schema version of the persisted save record.
// Records with an older version are merged over fresh defaults on load.
const SaveVersion = 1

// DefaultSpeechRate is the text-to-speech rate used until a player changes it
const DefaultSpeechRate = 0.85

// LevelProgress records a single level's best results for a player
type LevelProgress struct {
	Completed   bool     `json:"completed"`
	Score       int      `json:"score"`
	Stars       int      `json:"stars"`
	WordsHelped []string `json:"wordsHelped"`
}

// ThemeProgress records a player's progress within one theme.
// TotalScore is always recomputed from the level scores, never set directly.
type ThemeProgress struct {
	CurrentLevel int                    `json:"currentLevel"`
	TotalScore   int                    `json:"totalScore"`
	Levels       map[int]*LevelProgress `json:"levels"`
}

// RecomputeTotalScore refreshes TotalScore from the per-level scores
func (tp *ThemeProgress) RecomputeTotalScore() {
	total := 0
	for _, lp := range tp.Levels {
		total += lp.Score
	}
	tp.TotalScore = total
}

// UserSettings holds player preferences
type UserSettings struct {
	SoundEnabled  bool    `json:"soundEnabled"`
	SpeechEnabled bool    `json:"speechEnabled"`
	SpeechRate    float64 `json:"speechRate"`
	// PINHash, when set, is a bcrypt hash of the grown-up PIN that
	// gates progress reset and settings changes from the web layer
	PINHash string `json:"pinHash,omitempty"`
}

// SavedProgress is the root persisted save record
type SavedProgress struct {
	Version    int                       `json:"version"`
	LastPlayed string                    `json:"lastPlayed"`
	Themes     map[string]*ThemeProgress `json:"themes"`
	Settings   UserSettings              `json:"settings"`
}

// NewSavedProgress returns a save record with default values
func NewSavedProgress() *SavedProgress {
	return &SavedProgress{
		Version: SaveVersion,
		Themes:  make(map[string]*ThemeProgress),
		Settings: UserSettings{
			SoundEnabled:  true,
			SpeechEnabled: true,
			SpeechRate:    DefaultSpeechRate,
		},
	}
}

// ThemeFor returns the progress entry for a theme, creating it if absent
func (sp *SavedProgress) ThemeFor(themeID string) *ThemeProgress {
	if sp.Themes == nil {
		sp.Themes = make(map[string]*ThemeProgress)
	}
	tp, ok := sp.Themes[themeID]
	if !ok {
		tp = &ThemeProgress{
			CurrentLevel: 1,
			Levels:       make(map[int]*LevelProgress),
		}
		sp.Themes[themeID] = tp
	}
	return tp
}

// LevelFor returns the progress entry for a level within a theme,
// creating theme and level entries if absent
func (sp *SavedProgress) LevelFor(themeID string, level int) *LevelProgress {
	tp := sp.ThemeFor(themeID)
	if tp.Levels == nil {
		tp.Levels = make(map[int]*LevelProgress)
	}
	lp, ok := tp.Levels[level]
	if !ok {
		lp = &LevelProgress{WordsHelped: []string{}}
		tp.Levels[level] = lp
	}
	return lp
}
