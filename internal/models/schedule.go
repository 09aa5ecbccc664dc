package models

// LegendEntry represents one row of the course legend table
// (course code plus its bilingual display names).
type LegendEntry struct {
	Code   string `json:"code"`
	NameEN string `json:"name_en"`
	NameTH string `json:"name_th"`
}

// LegendMap maps a course code to its legend entry. Rebuilt from scratch on
// every scrape; a repeated code overwrites the previous entry.
type LegendMap map[string]LegendEntry

// GridRow represents one weekday row of the timetable grid: the day label and
// the raw token lists extracted from its non-empty cells, in column order.
type GridRow struct {
	Day     string     `json:"day"`
	Columns [][]string `json:"columns"`
}

// ScheduleSession represents one weekly occurrence of a course after room
// enrichment. Building and MapImage are derived from Room.
type ScheduleSession struct {
	Day      string `json:"day"`
	Time     string `json:"time"`
	Room     string `json:"room"`
	Building string `json:"building"`
	MapImage string `json:"map_image"`
}

// Course represents a reconciled course: one legend entry joined with its
// deduplicated weekly sessions.
type Course struct {
	Code     string            `json:"code"`
	NameEN   string            `json:"name_en"`
	NameTH   string            `json:"name_th"`
	Sessions []ScheduleSession `json:"schedules"`
}
