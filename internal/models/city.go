package models

import "time"

// UserCity is a saved dashboard location. (Name, Country) is unique.
type UserCity struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Country string    `json:"country"`
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	AddedAt time.Time `json:"addedAt"`
}

// UsageRecord is one append-only API usage log row. The core only ever
// writes these; nothing reads them back.
type UsageRecord struct {
	Endpoint       string    `json:"endpoint"`
	Timestamp      time.Time `json:"timestamp"`
	ClientAddress  string    `json:"clientAddress"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
}
