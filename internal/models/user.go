package models

import "time"

// UserRecord is the persisted per-user record. The schedule is wholly
// replaced on every successful scrape; LineToken is updated independently and
// never cleared by a schedule update.
type UserRecord struct {
	Username    string    `json:"username"`
	Schedule    []Course  `json:"schedule"`
	LineToken   string    `json:"line_token"`
	LastUpdated time.Time `json:"last_updated"`
}

// DigestClass is one class occurrence inside a daily digest, flattened for
// the notification payload.
type DigestClass struct {
	Code     string `json:"code"`
	NameEN   string `json:"name_en"`
	NameTH   string `json:"name_th"`
	Time     string `json:"time"`
	Room     string `json:"room"`
	Building string `json:"building"`
	MapImage string `json:"map_image"`
}

// DailyDigest is one user's classes for a single day, sorted by start time.
// LineUserID carries the stored notification token.
type DailyDigest struct {
	Username   string        `json:"username"`
	LineUserID string        `json:"line_user_id"`
	Day        string        `json:"day"`
	Classes    []DigestClass `json:"classes"`
}
