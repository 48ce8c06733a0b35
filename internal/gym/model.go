package gym

import (
	"time"

	"github.com/lib/pq"

	"github.com/vslbak/gymflow-web/internal/api"
)

// Class is a recurring offering. Duration is stored in ISO-8601 form.
type Class struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Instructor  string         `db:"instructor" json:"instructor"`
	Duration    string         `db:"duration" json:"duration"`
	TotalSpots  int            `db:"total_spots" json:"totalSpots"`
	ImageURL    string         `db:"image_url" json:"imageUrl"`
	Category    string         `db:"category" json:"category"`
	Level       string         `db:"level" json:"level"`
	Location    string         `db:"location" json:"location"`
	Description string         `db:"description" json:"description"`
	Price       float64        `db:"price" json:"price"`
	ClassTime   string         `db:"class_time" json:"classTime"`
	DaysOfWeek  pq.StringArray `db:"days_of_week" json:"daysOfWeek"`
	WhatToBring pq.StringArray `db:"what_to_bring" json:"whatToBring"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// Session is a dated occurrence of a class with its remaining capacity.
type Session struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"classId"`
	Date      string    `db:"session_date" json:"date"`
	Time      string    `db:"start_time" json:"time"`
	SpotsLeft int       `db:"spots_left" json:"spotsLeft"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (c *Class) ToAPI() api.GymClass {
	return api.GymClass{
		ID:          c.ID,
		Name:        c.Name,
		Instructor:  c.Instructor,
		Duration:    c.Duration,
		TotalSpots:  c.TotalSpots,
		ImageURL:    c.ImageURL,
		Category:    c.Category,
		Level:       c.Level,
		Location:    c.Location,
		Description: c.Description,
		Price:       c.Price,
		ClassTime:   c.ClassTime,
		DaysOfWeek:  nonNil(c.DaysOfWeek),
		WhatToBring: nonNil(c.WhatToBring),
	}
}

// ToAPI renders the session. With a parent class the snapshot is embedded
// and its classTime is the session's start time.
func (s *Session) ToAPI(parent *Class) api.ClassSession {
	out := api.ClassSession{
		ID:        s.ID,
		ClassID:   s.ClassID,
		Date:      s.Date,
		Time:      s.Time,
		SpotsLeft: s.SpotsLeft,
	}
	if parent != nil {
		snapshot := parent.ToAPI()
		if s.Time != "" {
			snapshot.ClassTime = s.Time
		}
		out.Class = &snapshot
	}
	return out
}

func classFromRequest(req api.CreateClassRequest) Class {
	return Class{
		Name:        req.Name,
		Instructor:  req.Instructor,
		Duration:    req.Duration,
		TotalSpots:  req.TotalSpots,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Level:       req.Level,
		Location:    req.Location,
		Description: req.Description,
		Price:       req.Price,
		ClassTime:   req.ClassTime,
		DaysOfWeek:  pq.StringArray(nonNil(req.DaysOfWeek)),
		WhatToBring: pq.StringArray(nonNil(req.WhatToBring)),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
