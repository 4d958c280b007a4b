package models

import "time"

// UsageRecord tracks how many AI questions a user has asked on a given day.
// Date holds the UTC calendar day of the last reset.
type UsageRecord struct {
	UserID int64     `json:"user_id"`
	Date   time.Time `json:"date"`
	Count  int       `json:"count"`
}

// SiteStats holds visit counters reported by the site stats endpoint.
type SiteStats struct {
	Today int64 `json:"today"`
	Total int64 `json:"total"`
}
