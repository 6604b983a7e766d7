package dashboard

import (
	"strings"

	"github.com/google/uuid"
	"weatherdash/api"
)

// DefaultHistorySize bounds History when NewSession gets a non-positive size
const DefaultHistorySize = 10

// Session is the caller-owned state of one dashboard user. It is not safe for
// concurrent use; the interactive loop owns it.
type Session struct {
	ID           uuid.UUID
	Units        api.Units
	ShowForecast bool

	// Last is the most recent successful lookup, nil until one succeeds
	Last *api.CurrentConditions

	historySize int
	history     []string // most recent first
	favorites   []string // insertion order
}

// NewSession starts a session with a fresh identifier
func NewSession(units api.Units, historySize int) *Session {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Session{
		ID:          uuid.New(),
		Units:       units,
		historySize: historySize,
	}
}

// Record moves city to the front of the history. Cities are compared
// case-insensitively; the newest spelling is kept.
func (s *Session) Record(city string) {
	city = strings.TrimSpace(city)
	if city == "" {
		return
	}

	history := make([]string, 0, len(s.history)+1)
	history = append(history, city)
	for _, h := range s.history {
		if !strings.EqualFold(h, city) {
			history = append(history, h)
		}
	}
	if len(history) > s.historySize {
		history = history[:s.historySize]
	}
	s.history = history
}

// History returns recent cities, most recent first
func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

// ToggleFavorite adds city to the favorites, or removes it when present.
// It reports whether the city is a favorite afterwards.
func (s *Session) ToggleFavorite(city string) bool {
	city = strings.TrimSpace(city)
	if city == "" {
		return false
	}

	for i, f := range s.favorites {
		if strings.EqualFold(f, city) {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return false
		}
	}
	s.favorites = append(s.favorites, city)
	return true
}

// IsFavorite reports whether city is in the favorites
func (s *Session) IsFavorite(city string) bool {
	for _, f := range s.favorites {
		if strings.EqualFold(f, strings.TrimSpace(city)) {
			return true
		}
	}
	return false
}

// Favorites returns favorite cities in the order they were added
func (s *Session) Favorites() []string {
	return append([]string(nil), s.favorites...)
}
