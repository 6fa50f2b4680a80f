package models

import "time"

// CommunityPost is a discussion thread mentioning a work.
type CommunityPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	Community   string  `json:"community"`
	CreatedUTC  int64   `json:"created_utc"` // unix seconds
	Score       float64 `json:"score"`
}

// EngagementScore weights upvotes over comments.
func EngagementScore(ups, comments int) float64 {
	return float64(ups)*0.7 + float64(comments)*0.3
}

// Created returns the creation time, or the zero time when unknown.
func (p CommunityPost) Created() time.Time {
	if p.CreatedUTC <= 0 {
		return time.Time{}
	}
	return time.Unix(p.CreatedUTC, 0).UTC()
}
