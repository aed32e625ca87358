package shortener

import "time"

// Code identifies either a short link or the name root of an uploaded file.
type Code string

// ShortLink maps a short code to the long URL it redirects to.
type ShortLink struct {
	Code      Code
	LongURL   string
	Custom    bool // code was supplied by the caller
	CreatedAt time.Time
}
