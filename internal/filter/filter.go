// Package filter implements the Record Filter: type selection (keyboard
// verbatim, mouse important-actions-only, screenshot sliding-window) and
// consecutive-event merging, applied to a RawRecord batch after the Image
// Processor has run. Grounded line-for-line on
// original_source/backend/processing/record_filter.py.
package filter

import (
	"sort"
	"time"

	"github.com/texasoct/idod/internal/models"
)

const (
	scrollMergeThreshold = 100 * time.Millisecond
	clickMergeThreshold  = 500 * time.Millisecond
	keyboardMergeWindow  = 100 * time.Millisecond
	screenshotMergeWindow = time.Second
	defaultMinScreenshotsPerWindow = 2
	screenshotWindow               = time.Second
)

// Filter applies type selection and consecutive-event merging to a record
// batch.
type Filter struct {
	minScreenshotsPerWindow int
}

// New builds a Filter with the given per-window screenshot cap (default
// 2 when minScreenshotsPerWindow <= 0).
func New(minScreenshotsPerWindow int) *Filter {
	if minScreenshotsPerWindow <= 0 {
		minScreenshotsPerWindow = defaultMinScreenshotsPerWindow
	}
	return &Filter{minScreenshotsPerWindow: minScreenshotsPerWindow}
}

// FilterAll runs type selection on each kind, merges the result by
// timestamp, and merges consecutive compatible records.
func (f *Filter) FilterAll(records []models.RawRecord) []MergedRecord {
	keyboard := filterKeyboard(records)
	mouse := filterMouse(records)
	screenshots := f.filterScreenshots(records)

	all := make([]models.RawRecord, 0, len(keyboard)+len(mouse)+len(screenshots))
	all = append(all, keyboard...)
	all = append(all, mouse...)
	all = append(all, screenshots...)

	sort.SliceStable(all, func(i, j int) bool { return all[i].Time().Before(all[j].Time()) })

	return mergeConsecutive(all)
}

func filterKeyboard(records []models.RawRecord) []models.RawRecord {
	var out []models.RawRecord
	for _, r := range records {
		if r.Kind() == models.KindKeyboard {
			out = append(out, r)
		}
	}
	return out
}

func filterMouse(records []models.RawRecord) []models.RawRecord {
	var out []models.RawRecord
	for _, r := range records {
		mr, ok := r.(models.MouseRecord)
		if !ok || !models.ImportantMouseActions[mr.Action] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// filterScreenshots keeps at most minScreenshotsPerWindow records inside
// each sliding 1s window, resetting the window whenever a record falls
// outside it.
func (f *Filter) filterScreenshots(records []models.RawRecord) []models.RawRecord {
	var out []models.RawRecord
	var windowStart time.Time
	inWindow := 0

	for _, r := range records {
		if r.Kind() != models.KindScreenshot {
			continue
		}
		ts := r.Time()
		if windowStart.IsZero() {
			windowStart = ts
			inWindow = 0
		}
		elapsed := ts.Sub(windowStart)
		if elapsed >= screenshotWindow {
			windowStart = ts
			inWindow = 0
			elapsed = 0
		}
		if elapsed < screenshotWindow && inWindow >= f.minScreenshotsPerWindow {
			continue
		}
		out = append(out, r)
		inWindow++
	}
	return out
}
