package application

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/medilens/internal/domain/model"
)

var (
	historyResultField    = aliases{"response", "result", "analysis"}
	historyImageField     = aliases{"image_url", "image"}
	historyTimestampField = aliases{"created_at", "timestamp", "date"}
	historyTitleField     = aliases{"title", "symptoms"}
)

// defaultHistoryTitle labels an entry with neither a title nor symptoms.
const defaultHistoryTitle = "Analysis"

// historyTimeLayouts are tried in order. Python's isoformat omits the zone.
var historyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// HistoryEntries converts a history response into entries, most recent first.
// The response is either a list or an object with a "history" list; anything
// else yields no entries. The service returns oldest first.
func HistoryEntries(raw any) []model.HistoryEntry {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		if list, ok := v["history"].([]any); ok {
			items = list
		}
	}

	entries := make([]model.HistoryEntry, 0, len(items))
	for i, item := range items {
		entries = append(entries, historyEntry(i, item))
	}
	slices.Reverse(entries)
	return entries
}

func historyEntry(index int, item any) model.HistoryEntry {
	obj, ok := item.(map[string]any)
	if !ok {
		return model.HistoryEntry{
			ID:     strconv.Itoa(index),
			Title:  defaultHistoryTitle,
			Result: Normalize(nil),
		}
	}

	res := historyResultField.firstSet(obj)
	if res == nil {
		res = obj
	}

	imageURL := stringify(historyImageField.firstSet(obj))
	if imageURL == "" {
		if resObj, ok := res.(map[string]any); ok {
			imageURL = stringify(aliases{"image_url"}.firstSet(resObj))
		}
	}

	title := stringify(historyTitleField.firstSet(obj))
	if title == "" {
		title = defaultHistoryTitle
	}

	id := stringify(aliases{"id"}.firstSet(obj))
	if id == "" {
		id = strconv.Itoa(index)
	}

	rawTime := historyTimestampField.firstSet(obj)

	return model.HistoryEntry{
		ID:           id,
		Title:        title,
		Symptoms:     stringify(aliases{"symptoms"}.firstSet(obj)),
		Timestamp:    parseHistoryTime(rawTime),
		RawTimestamp: stringify(rawTime),
		ImageURL:     imageURL,
		Result:       Normalize(res),
		RawResult:    res,
	}
}

// parseHistoryTime accepts ISO-8601 strings with or without a zone, and unix
// epochs in seconds or milliseconds. Unparseable values yield the zero time.
func parseHistoryTime(v any) time.Time {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range historyTimeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return epoch(f)
		}
	case float64:
		return epoch(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return epoch(f)
		}
	}
	return time.Time{}
}

// epochMillisThreshold separates second and millisecond epochs. Seconds pass
// it only after the year 33658.
const epochMillisThreshold = 1e12

func epoch(f float64) time.Time {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return time.Time{}
	}
	if f >= epochMillisThreshold {
		return time.UnixMilli(int64(f)).UTC()
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
