// Package config resolves the runtime settings: built-in defaults, merged
// with an optional config.json, then per-flag overrides. Everything past
// this package consumes a fully-resolved Settings value; nothing reads
// configuration ambiently.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"yt-bulk-scheduler/internal/runstore"
)

const (
	ModeDaily  = "daily"
	ModeWeekly = "weekly"
)

const (
	DefaultTimezone      = "America/Sao_Paulo"
	DefaultCategoryID    = "20"
	DefaultPrivacy       = "private"
	DefaultDailyLimit    = 10
	DefaultResetHour     = 5
	DefaultWeeklyDay     = "monday"
	DefaultWeeklyHour    = 10
	DefaultPlaylistTitle = "Uploaded Videos"
	MinHourSlot          = 0
	MaxHourSlot          = 23
)

var defaultHourSlots = []int{8, 18}

var defaultExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".flv", ".wmv", ".webm"}

// FileConfig mirrors config.json. Pointer fields distinguish "absent" from
// zero values so file settings merge cleanly over defaults.
type FileConfig struct {
	Timezone        string   `json:"timezone,omitempty"`
	HourSlots       []int    `json:"hour_slots,omitempty"`
	ScheduleMode    string   `json:"schedule_mode,omitempty"`
	ScheduleDay     string   `json:"schedule_day,omitempty"`
	ScheduleHour    *int     `json:"schedule_hour,omitempty"`
	CategoryID      string   `json:"category_id,omitempty"`
	PrivacyStatus   string   `json:"privacy_status,omitempty"`
	Description     string   `json:"description,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	VideoExtensions []string `json:"video_extensions,omitempty"`
	DailyLimit      *int     `json:"daily_upload_limit,omitempty"`
	QuotaResetHour  *int     `json:"quota_reset_hour,omitempty"`
	PlaylistID      string   `json:"playlist_id,omitempty"`
	CreatePlaylist  bool     `json:"create_playlist,omitempty"`
	PlaylistTitle   string   `json:"playlist_title,omitempty"`
}

// Overrides carries the per-run command-line values. Zero values mean "not
// set on the command line".
type Overrides struct {
	StartDate    string // YYYY-MM-DD
	Timezone     string
	HourSlots    []int
	ScheduleMode string
	ScheduleDay  string
	ScheduleHour *int
	CategoryID   string
	Privacy      string
	Description  string
	Tags         []string
}

// Settings is the fully-resolved, validated configuration handed to the
// engine. StartDate is midnight of the start day in Zone; StartSpecified
// records whether the operator set it, since an unset date anchors weekly
// scheduling at the current instant rather than midnight today.
type Settings struct {
	Zone     *time.Location
	ZoneName string

	StartDate      time.Time
	StartSpecified bool

	Mode       string
	HourSlots  []int
	WeeklyDay  time.Weekday
	WeeklyHour int

	CategoryID    string
	PrivacyStatus string
	Description   string
	Tags          []string

	Extensions map[string]bool

	DailyLimit int
	ResetHour  int

	PlaylistID     string
	CreatePlaylist bool
	PlaylistTitle  string
}

// Load reads config.json if present. A missing file is not an error; the
// defaults apply.
func Load(path string) (FileConfig, error) {
	var fc FileConfig
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("stat config %s: %w", path, err)
	}
	if err := runstore.ReadJSON(path, &fc); err != nil {
		return FileConfig{}, err
	}
	return fc, nil
}

// Default returns the starter config written by `init`.
func Default() FileConfig {
	hour := DefaultWeeklyHour
	limit := DefaultDailyLimit
	reset := DefaultResetHour
	return FileConfig{
		Timezone:        DefaultTimezone,
		HourSlots:       slices.Clone(defaultHourSlots),
		ScheduleMode:    ModeDaily,
		ScheduleDay:     DefaultWeeklyDay,
		ScheduleHour:    &hour,
		CategoryID:      DefaultCategoryID,
		PrivacyStatus:   DefaultPrivacy,
		VideoExtensions: slices.Clone(defaultExtensions),
		DailyLimit:      &limit,
		QuotaResetHour:  &reset,
	}
}

// Resolve merges defaults, file config, and overrides, then validates the
// result. Validation failures here abort a run before any lock or ledger
// activity.
func Resolve(fc FileConfig, ov Overrides, now time.Time) (Settings, error) {
	zoneName := firstNonEmpty(ov.Timezone, fc.Timezone, DefaultTimezone)
	zone, err := time.LoadLocation(zoneName)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid timezone %q: %w", zoneName, err)
	}

	startDate, err := resolveStartDate(ov.StartDate, zone, now)
	if err != nil {
		return Settings{}, err
	}

	mode := strings.ToLower(strings.TrimSpace(firstNonEmpty(ov.ScheduleMode, fc.ScheduleMode, ModeDaily)))
	if mode != ModeDaily && mode != ModeWeekly {
		return Settings{}, fmt.Errorf("invalid schedule mode %q (expected %s or %s)", mode, ModeDaily, ModeWeekly)
	}

	hourSlots := ov.HourSlots
	if len(hourSlots) == 0 {
		hourSlots = fc.HourSlots
	}
	if len(hourSlots) == 0 {
		hourSlots = defaultHourSlots
	}
	hourSlots, err = normalizeHourSlots(hourSlots)
	if err != nil {
		return Settings{}, err
	}

	weeklyDay, err := parseWeekday(firstNonEmpty(ov.ScheduleDay, fc.ScheduleDay, DefaultWeeklyDay))
	if err != nil {
		return Settings{}, err
	}
	weeklyHour := DefaultWeeklyHour
	if fc.ScheduleHour != nil {
		weeklyHour = *fc.ScheduleHour
	}
	if ov.ScheduleHour != nil {
		weeklyHour = *ov.ScheduleHour
	}
	if weeklyHour < MinHourSlot || weeklyHour > MaxHourSlot {
		return Settings{}, fmt.Errorf("invalid schedule hour %d (must be between %d and %d)", weeklyHour, MinHourSlot, MaxHourSlot)
	}

	dailyLimit := DefaultDailyLimit
	if fc.DailyLimit != nil {
		dailyLimit = *fc.DailyLimit
	}
	if dailyLimit <= 0 {
		return Settings{}, fmt.Errorf("daily upload limit must be positive, got %d", dailyLimit)
	}

	resetHour := DefaultResetHour
	if fc.QuotaResetHour != nil {
		resetHour = *fc.QuotaResetHour
	}
	if resetHour < MinHourSlot || resetHour > MaxHourSlot {
		return Settings{}, fmt.Errorf("invalid quota reset hour %d (must be between %d and %d)", resetHour, MinHourSlot, MaxHourSlot)
	}

	extensions := fc.VideoExtensions
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}

	tags := ov.Tags
	if len(tags) == 0 {
		tags = fc.Tags
	}

	return Settings{
		Zone:           zone,
		ZoneName:       zoneName,
		StartDate:      startDate,
		StartSpecified: strings.TrimSpace(ov.StartDate) != "",
		Mode:           mode,
		HourSlots:      hourSlots,
		WeeklyDay:      weeklyDay,
		WeeklyHour:     weeklyHour,
		CategoryID:     firstNonEmpty(ov.CategoryID, fc.CategoryID, DefaultCategoryID),
		PrivacyStatus:  firstNonEmpty(ov.Privacy, fc.PrivacyStatus, DefaultPrivacy),
		Description:    firstNonEmpty(ov.Description, fc.Description),
		Tags:           normalizeTags(tags),
		Extensions:     extensionSet(extensions),
		DailyLimit:     dailyLimit,
		ResetHour:      resetHour,
		PlaylistID:     strings.TrimSpace(fc.PlaylistID),
		CreatePlaylist: fc.CreatePlaylist,
		PlaylistTitle:  firstNonEmpty(fc.PlaylistTitle, DefaultPlaylistTitle),
	}, nil
}

func resolveStartDate(raw string, zone *time.Location, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		local := now.In(zone)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q (expected YYYY-MM-DD): %w", raw, err)
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, zone), nil
}

func normalizeHourSlots(raw []int) ([]int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one hour slot is required")
	}
	seen := make(map[int]bool, len(raw))
	out := make([]int, 0, len(raw))
	for _, h := range raw {
		if h < MinHourSlot || h > MaxHourSlot {
			return nil, fmt.Errorf("invalid hour slot %d (must be between %d and %d)", h, MinHourSlot, MaxHourSlot)
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	slices.Sort(out)
	return out, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(raw string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("invalid schedule day %q", raw)
	}
	return day, nil
}

func normalizeTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		t := strings.TrimSpace(tag)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func extensionSet(raw []string) map[string]bool {
	set := make(map[string]bool, len(raw))
	for _, ext := range raw {
		e := strings.ToLower(strings.TrimSpace(ext))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// ParseTagList splits a comma-separated --tags value.
func ParseTagList(raw string) []string {
	parts := strings.Split(raw, ",")
	return normalizeTags(parts)
}

// ParseHourSlots splits a comma-separated --hour-slots value.
func ParseHourSlots(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var h int
		if _, err := fmt.Sscanf(p, "%d", &h); err != nil {
			return nil, fmt.Errorf("invalid hour slot %q", p)
		}
		out = append(out, h)
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
