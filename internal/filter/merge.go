package filter

import (
	"time"

	"github.com/texasoct/idod/internal/models"
)

// MergedRecord wraps one or more source RawRecords merged into a single
// logical event. A group of one preserves the original record's fields
// untouched; a larger group carries the merge summary described for each
// record kind (sequence/click/scroll/screenshot run).
type MergedRecord struct {
	Kind      models.RecordKind
	StartTime time.Time
	EndTime   time.Time
	Count     int
	Merged    bool

	// Keyboard sequence fields.
	Key       string
	KeyType   string
	Modifiers []string

	// Mouse click/scroll fields.
	Action      string
	Button      string
	StartX      float64
	StartY      float64
	EndX        float64
	EndY        float64
	TotalDX     float64
	TotalDY     float64

	// Screenshot sequence fields.
	ImageBytes   []byte
	ImagePath    string
	MonitorIndex int

	Source []models.RawRecord
}

// Duration returns the span covered by the merged group.
func (m MergedRecord) Duration() time.Duration { return m.EndTime.Sub(m.StartTime) }

func mergeConsecutive(records []models.RawRecord) []MergedRecord {
	if len(records) == 0 {
		return nil
	}

	var out []MergedRecord
	group := []models.RawRecord{records[0]}

	flush := func() {
		if merged := mergeGroup(group); merged != nil {
			out = append(out, *merged)
		}
	}

	for i := 1; i < len(records); i++ {
		prev, curr := records[i-1], records[i]
		if canMerge(prev, curr) {
			group = append(group, curr)
			continue
		}
		flush()
		group = []models.RawRecord{curr}
	}
	flush()

	return out
}

func canMerge(prev, curr models.RawRecord) bool {
	if prev.Kind() != curr.Kind() {
		return false
	}
	diff := curr.Time().Sub(prev.Time())

	switch prev.Kind() {
	case models.KindKeyboard:
		p, pok := prev.(models.KeyboardRecord)
		c, cok := curr.(models.KeyboardRecord)
		return pok && cok && diff <= keyboardMergeWindow && p.Key == c.Key

	case models.KindMouse:
		p, pok := prev.(models.MouseRecord)
		c, cok := curr.(models.MouseRecord)
		if !pok || !cok {
			return false
		}
		if p.Action == models.MouseScroll && c.Action == models.MouseScroll {
			return diff <= scrollMergeThreshold
		}
		if p.Action == models.MousePress && c.Action == models.MouseRelease {
			return diff <= clickMergeThreshold
		}
		return false

	case models.KindScreenshot:
		return diff <= screenshotMergeWindow

	default:
		return false
	}
}

func mergeGroup(group []models.RawRecord) *MergedRecord {
	if len(group) == 0 {
		return nil
	}
	first := group[0]
	if len(group) == 1 {
		return singleRecord(first)
	}

	switch first.Kind() {
	case models.KindKeyboard:
		return mergeKeyboard(group)
	case models.KindMouse:
		return mergeMouse(group)
	case models.KindScreenshot:
		return mergeScreenshots(group)
	default:
		return singleRecord(first)
	}
}

func singleRecord(r models.RawRecord) *MergedRecord {
	m := &MergedRecord{Kind: r.Kind(), StartTime: r.Time(), EndTime: r.Time(), Count: 1, Source: []models.RawRecord{r}}
	switch v := r.(type) {
	case models.KeyboardRecord:
		m.Key, m.KeyType, m.Modifiers = v.Key, v.KeyType, v.Modifiers
		m.Action = string(v.Action)
	case models.MouseRecord:
		m.Action = string(v.Action)
		m.Button = v.Button
		m.StartX, m.StartY = v.X, v.Y
		m.EndX, m.EndY = v.X, v.Y
		m.TotalDX, m.TotalDY = v.DX, v.DY
	case models.ScreenshotRecord:
		m.ImageBytes = v.ImageBytes
		m.ImagePath = v.ImagePath
		m.MonitorIndex = v.MonitorIndex
	}
	return m
}

func mergeKeyboard(group []models.RawRecord) *MergedRecord {
	first := group[0].(models.KeyboardRecord)
	last := group[len(group)-1]
	return &MergedRecord{
		Kind: models.KindKeyboard, StartTime: group[0].Time(), EndTime: last.Time(),
		Count: len(group), Merged: true,
		Key: first.Key, KeyType: first.KeyType, Modifiers: first.Modifiers,
		Action: "sequence", Source: group,
	}
}

func mergeMouse(group []models.RawRecord) *MergedRecord {
	first := group[0].(models.MouseRecord)
	lastRec := group[len(group)-1].(models.MouseRecord)

	if first.Action == models.MouseScroll {
		var totalDX, totalDY float64
		for _, r := range group {
			mr := r.(models.MouseRecord)
			totalDX += mr.DX
			totalDY += mr.DY
		}
		return &MergedRecord{
			Kind: models.KindMouse, StartTime: group[0].Time(), EndTime: lastRec.Time(),
			Count: len(group), Merged: true, Action: "scroll",
			EndX: lastRec.X, EndY: lastRec.Y, TotalDX: totalDX, TotalDY: totalDY, Source: group,
		}
	}

	if first.Action == models.MousePress && lastRec.Action == models.MouseRelease {
		return &MergedRecord{
			Kind: models.KindMouse, StartTime: group[0].Time(), EndTime: lastRec.Time(),
			Count: len(group), Merged: true, Action: "click", Button: first.Button,
			StartX: first.X, StartY: first.Y, EndX: lastRec.X, EndY: lastRec.Y, Source: group,
		}
	}

	return singleRecord(group[0])
}

func mergeScreenshots(group []models.RawRecord) *MergedRecord {
	first := group[0].(models.ScreenshotRecord)
	last := group[len(group)-1].(models.ScreenshotRecord)

	imgBytes := first.ImageBytes
	imgPath := first.ImagePath
	if len(last.ImageBytes) > 0 {
		imgBytes = last.ImageBytes
	}
	if last.ImagePath != "" {
		imgPath = last.ImagePath
	}

	return &MergedRecord{
		Kind: models.KindScreenshot, StartTime: group[0].Time(), EndTime: group[len(group)-1].Time(),
		Count: len(group), Merged: true,
		ImageBytes: imgBytes, ImagePath: imgPath, MonitorIndex: first.MonitorIndex, Source: group,
	}
}
