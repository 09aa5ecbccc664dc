// Package rooms derives a building name and an optional campus-map image URL
// from a raw room code such as "S-101" or "QS2-308".
package rooms

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// arrangedPrefix marks classes with no fixed room ("arranged").
	arrangedPrefix = "ARR"
	// onlineMarker appears anywhere in the room code of online classes.
	onlineMarker = "ONLINE"
	// onlineLabel is the building label for arranged/online classes.
	onlineLabel = "เรียนออนไลน์จ้า"
)

// buildingNames maps a room-code prefix to its building name on campus.
var buildingNames = map[string]string{
	"S":   "ตึก 100 ปี (สมเด็จพระเทพฯ)",
	"P":   "อาคารวิทยาศาสตร์ (P)",
	"L":   "อาคารเรียนรวม (L)",
	"QS2": "อาคารภูมิราชนครินทร์ (QS2)",
	"KB":  "อาคารเคบี (KB)",
	"SC":  "อาคารวิทยาศาสตร์ (SC)",
	"EN":  "คณะวิศวกรรมศาสตร์",
}

// mapExtensions is probed in order; the first existing file wins.
var mapExtensions = []string{".jpg", ".png", ".jpeg", ".JPG", ".PNG"}

// Resolver resolves room codes against the campus building table and the
// map-image directory. Resolution is pure: the same code and the same
// directory contents always yield the same result.
type Resolver struct {
	mapsDir string
	baseURL string
}

// NewResolver creates a Resolver. mapsDir is the directory holding map images
// named "<room code><ext>"; baseURL is the public server URL images are
// served under.
func NewResolver(mapsDir, baseURL string) *Resolver {
	return &Resolver{
		mapsDir: mapsDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Resolve returns the building name for a room code, plus the URL of its map
// image or "" when no image file exists.
//
// The arranged/online check must run before the prefix table: codes like
// "S-ONLINE" are online classes, not rooms in building S.
func (r *Resolver) Resolve(roomCode string) (building, mapImage string) {
	roomCode = strings.TrimSpace(roomCode)
	prefix := strings.ToUpper(strings.TrimSpace(strings.SplitN(roomCode, "-", 2)[0]))

	switch {
	case prefix == arrangedPrefix || strings.Contains(strings.ToUpper(roomCode), onlineMarker):
		building = onlineLabel
	default:
		name, ok := buildingNames[prefix]
		if !ok {
			name = "อาคาร " + prefix
		}
		building = name
	}

	return building, r.findMapImage(roomCode)
}

// findMapImage probes the maps directory for "<room code><ext>" with each
// known extension and returns the public URL of the first match.
func (r *Resolver) findMapImage(roomCode string) string {
	if roomCode == "" {
		return ""
	}
	for _, ext := range mapExtensions {
		filename := roomCode + ext
		if _, err := os.Stat(filepath.Join(r.mapsDir, filename)); err == nil {
			return r.baseURL + "/static/maps/" + filename
		}
	}
	return ""
}
