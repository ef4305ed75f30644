package http

import (
	"net/url"
	"time"

	"github.com/KarpovAlexandrGo/task-tracker/internal/entity"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseFilter reads the list filters from the query string. The status is
// passed through untouched; only dates are checked here.
func parseFilter(q url.Values) (entity.TaskFilter, error) {
	filter := entity.TaskFilter{Status: q.Get("status")}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"dueDate", &filter.DueDate},
		{"startDate", &filter.StartDate},
		{"endDate", &filter.EndDate},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		t, ok := parseDate(raw)
		if !ok {
			return entity.TaskFilter{}, badRequest("invalid %s %q: expected YYYY-MM-DD or RFC3339", p.name, raw)
		}
		*p.dst = &t
	}

	return filter, nil
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
