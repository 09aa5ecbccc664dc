package scraper

import (
	"strings"

	"github.com/Erm2130/buu-api/internal/models"
)

// RoomResolver maps a raw room code to a building display name and an
// optional campus-map image URL.
type RoomResolver interface {
	Resolve(roomCode string) (building, mapImage string)
}

// slot is one grid token list decoded by position. The portal guarantees
// token order only: index 0 is the course code, index 2 the room, index 3
// the time range wrapped in parentheses. Index 1 carries the section number
// and is not used.
type slot struct {
	Code string
	Room string
	Time string
}

func decodeTokens(tokens []string) slot {
	s := slot{Code: tokens[0], Room: "-", Time: "-"}
	if len(tokens) > 2 {
		s.Room = tokens[2]
	}
	if len(tokens) > 3 {
		s.Time = strings.NewReplacer("(", "", ")", "").Replace(tokens[3])
	}
	return s
}

// Reconciler joins grid slots against the course legend and groups the
// surviving sessions into Courses.
type Reconciler struct {
	rooms RoomResolver
}

func NewReconciler(rooms RoomResolver) *Reconciler {
	return &Reconciler{rooms: rooms}
}

// Reconcile turns raw grid rows into Courses. Slots are deduplicated on
// code, day, time, and room taken together, so a course meeting twice on
// one day in different rooms keeps both sessions. Slots whose code has no
// legend entry are dropped. Courses come out in the order their code first
// appeared in the grid, sessions in grid order within each course.
func (r *Reconciler) Reconcile(legend models.LegendMap, rows []models.GridRow) []models.Course {
	seen := make(map[string]bool)
	sessions := make(map[string][]models.ScheduleSession)
	var order []string

	for _, row := range rows {
		for _, tokens := range row.Columns {
			if len(tokens) == 0 {
				continue
			}
			s := decodeTokens(tokens)
			key := s.Code + "|" + row.Day + "|" + s.Time + "|" + s.Room
			if seen[key] {
				continue
			}
			seen[key] = true
			if _, ok := legend[s.Code]; !ok {
				continue
			}
			if _, ok := sessions[s.Code]; !ok {
				order = append(order, s.Code)
			}
			building, mapImage := r.rooms.Resolve(s.Room)
			sessions[s.Code] = append(sessions[s.Code], models.ScheduleSession{
				Day:      row.Day,
				Time:     s.Time,
				Room:     s.Room,
				Building: building,
				MapImage: mapImage,
			})
		}
	}

	courses := make([]models.Course, 0, len(order))
	for _, code := range order {
		entry := legend[code]
		courses = append(courses, models.Course{
			Code:     code,
			NameEN:   entry.NameEN,
			NameTH:   entry.NameTH,
			Sessions: sessions[code],
		})
	}
	return courses
}
