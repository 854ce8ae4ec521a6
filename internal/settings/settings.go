// Package settings holds the display and header-level toggles, their
// persisted key/value form, and the live service hosts read them from.
package settings

import (
	"errors"
	"fmt"

	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/render"
	"github.com/ideo2004-afk/Obsidian-H2-Word-Count/internal/section"
)

// Persisted keys.
const (
	KeyShowWords       = "showWords"
	KeyShowChars       = "showChars"
	KeyShowPage        = "showPage"
	KeyShowReadingTime = "showReadingTime"
	KeyShowH1          = "showH1"
	KeyShowH2          = "showH2"
	KeyShowH3          = "showH3"
)

var ErrUnknownKey = errors.New("unknown settings key")

// Settings are the seven user toggles. The first four pick the metrics a
// label shows; the last three pick which header ranks are tracked.
type Settings struct {
	ShowWords       bool `json:"showWords" yaml:"showWords"`
	ShowChars       bool `json:"showChars" yaml:"showChars"`
	ShowPage        bool `json:"showPage" yaml:"showPage"`
	ShowReadingTime bool `json:"showReadingTime" yaml:"showReadingTime"`
	ShowH1          bool `json:"showH1" yaml:"showH1"`
	ShowH2          bool `json:"showH2" yaml:"showH2"`
	ShowH3          bool `json:"showH3" yaml:"showH3"`
}

func Defaults() Settings {
	return Settings{
		ShowWords: true,
		ShowChars: true,
		ShowH2:    true,
	}
}

// Keys lists every persisted key in settings-surface order.
func Keys() []string {
	return []string{
		KeyShowWords, KeyShowChars, KeyShowPage, KeyShowReadingTime,
		KeyShowH1, KeyShowH2, KeyShowH3,
	}
}

func (s *Settings) field(key string) *bool {
	switch key {
	case KeyShowWords:
		return &s.ShowWords
	case KeyShowChars:
		return &s.ShowChars
	case KeyShowPage:
		return &s.ShowPage
	case KeyShowReadingTime:
		return &s.ShowReadingTime
	case KeyShowH1:
		return &s.ShowH1
	case KeyShowH2:
		return &s.ShowH2
	case KeyShowH3:
		return &s.ShowH3
	}
	return nil
}

// Get returns the value of key.
func (s Settings) Get(key string) (bool, error) {
	f := s.field(key)
	if f == nil {
		return false, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return *f, nil
}

// With returns a copy of s with key set to value.
func (s Settings) With(key string, value bool) (Settings, error) {
	f := s.field(key)
	if f == nil {
		return s, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	*f = value
	return s, nil
}

// Merge overrides s with the known keys present in m; unknown keys are
// ignored.
func (s Settings) Merge(m map[string]bool) Settings {
	for k, v := range m {
		if f := s.field(k); f != nil {
			*f = v
		}
	}
	return s
}

// FromMap fills the keys missing from m with their defaults.
func FromMap(m map[string]bool) Settings {
	return Defaults().Merge(m)
}

func (s Settings) ToMap() map[string]bool {
	m := make(map[string]bool, 7)
	for _, k := range Keys() {
		m[k] = *s.field(k)
	}
	return m
}

// Ranks is the set of tracked header ranks.
func (s Settings) Ranks() section.Ranks {
	return section.Ranks{false, s.ShowH1, s.ShowH2, s.ShowH3}
}

// Metrics is the set of metrics labels display.
func (s Settings) Metrics() render.Metrics {
	return render.Metrics{
		Words:       s.ShowWords,
		Chars:       s.ShowChars,
		Pages:       s.ShowPage,
		ReadingTime: s.ShowReadingTime,
	}
}

// Toggle is one switch of the settings surface.
type Toggle struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Value       bool   `json:"value"`
}

// Group is a headed block of toggles.
type Group struct {
	Heading string   `json:"heading"`
	Toggles []Toggle `json:"toggles"`
}

// Groups lays s out the way the settings surface presents it.
func (s Settings) Groups() []Group {
	return []Group{
		{
			Heading: "Display",
			Toggles: []Toggle{
				{KeyShowWords, "Words", "Show word count", s.ShowWords},
				{KeyShowChars, "Characters", "Show character count", s.ShowChars},
				{KeyShowPage, "Pages", "Show page count (300 words per page)", s.ShowPage},
				{KeyShowReadingTime, "Reading time", "Show estimated reading time", s.ShowReadingTime},
			},
		},
		{
			Heading: "Header levels",
			Toggles: []Toggle{
				{KeyShowH1, "Level 1 headers", "Show word count for level 1 headers", s.ShowH1},
				{KeyShowH2, "Level 2 headers", "Show word count for level 2 headers", s.ShowH2},
				{KeyShowH3, "Level 3 headers", "Show word count for level 3 headers", s.ShowH3},
			},
		},
	}
}
