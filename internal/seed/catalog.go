// Package seed holds the GymFlow demo catalogue and loads it into a store.
package seed

import (
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/booking"
	"github.com/vslbak/gymflow-web/internal/gym"
)

const DemoPassword = "password123"

// DemoUser is keyed by the id the in-memory store assigns on creation.
type DemoUser struct {
	Key      string
	Username string
	Email    string
	Phone    string
	Role     string
}

var Users = []DemoUser{
	{Key: "1", Username: "John Doe", Email: "test@gymflow.com", Phone: "+1 (555) 123-4567", Role: api.RoleUser},
	{Key: "2", Username: "Admin User", Email: "admin@gymflow.com", Phone: "+1 (555) 999-0000", Role: api.RoleAdmin},
}

var (
	mwf      = []string{"Monday", "Wednesday", "Friday"}
	tts      = []string{"Tuesday", "Thursday", "Saturday"}
	weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
)

func photo(id int) string {
	return fmt.Sprintf("https://images.pexels.com/photos/%d/pexels-photo-%d.jpeg?auto=compress&cs=tinysrgb&w=800", id, id)
}

// Classes returns the fifteen demo classes.
func Classes() []gym.Class {
	return []gym.Class{
		{
			ID: "class-1", Name: "Power Yoga Flow", Instructor: "Sarah Mitchell", Duration: "PT1H", TotalSpots: 20,
			ImageURL: photo(3822166), Category: "Yoga", Level: "Intermediate", Location: "Studio A, 2nd Floor",
			Description: "An energizing yoga flow that builds strength, flexibility, and mindfulness. Perfect for intermediate practitioners looking to deepen their practice.",
			Price: 25, ClassTime: "18:00", DaysOfWeek: pq.StringArray(mwf),
			WhatToBring: pq.StringArray{"Yoga mat", "Water bottle", "Comfortable athletic wear", "Towel"},
		},
		{
			ID: "class-2", Name: "HIIT Cardio Blast", Instructor: "Mike Johnson", Duration: "PT45M", TotalSpots: 25,
			ImageURL: photo(416809), Category: "Cardio", Level: "Advanced", Location: "Main Gym Floor",
			Description: "High-intensity interval training designed to maximize calorie burn and boost your metabolism. Get ready to sweat!",
			Price: 30, ClassTime: "07:30", DaysOfWeek: pq.StringArray(tts),
			WhatToBring: pq.StringArray{"Water bottle", "Towel", "Athletic shoes", "Heart rate monitor (optional)"},
		},
		{
			ID: "class-3", Name: "Strength Training", Instructor: "Alex Chen", Duration: "PT50M", TotalSpots: 15,
			ImageURL: photo(841130), Category: "Strength", Level: "All Levels", Location: "Weight Room",
			Description: "Build lean muscle and increase your overall strength with progressive resistance training. Suitable for all fitness levels.",
			Price: 25, ClassTime: "17:00", DaysOfWeek: pq.StringArray(mwf),
			WhatToBring: pq.StringArray{"Water bottle", "Towel", "Weight lifting gloves (optional)", "Athletic shoes"},
		},
		{
			ID: "class-4", Name: "Spin Class", Instructor: "Emma Davis", Duration: "PT45M", TotalSpots: 30,
			ImageURL: photo(3764011), Category: "Cardio", Level: "Intermediate", Location: "Spin Studio",
			Description: "An intense cycling workout set to energizing music. Push your limits and burn calories in this high-energy class.",
			Price: 28, ClassTime: "08:00", DaysOfWeek: pq.StringArray{"Tuesday", "Thursday", "Sunday"},
			WhatToBring: pq.StringArray{"Water bottle", "Towel", "Cycling shoes or sneakers", "Padded shorts (optional)"},
		},
		{
			ID: "class-5", Name: "Pilates Core", Instructor: "Lisa Anderson", Duration: "PT55M", TotalSpots: 18,
			ImageURL: photo(3984340), Category: "Pilates", Level: "Beginner", Location: "Studio B, 2nd Floor",
			Description: "Focus on core strength, flexibility, and balance through controlled movements. Perfect for beginners and those recovering from injuries.",
			Price: 22, ClassTime: "09:00", DaysOfWeek: pq.StringArray(mwf),
			WhatToBring: pq.StringArray{"Mat", "Water bottle", "Comfortable clothing", "Small towel"},
		},
		{
			ID: "class-6", Name: "Boxing Fundamentals", Instructor: "James Wilson", Duration: "PT1H", TotalSpots: 20,
			ImageURL: photo(4753928), Category: "Boxing", Level: "All Levels", Location: "Boxing Ring",
			Description: "Learn proper boxing techniques while getting an incredible full-body workout. Improve your coordination, speed, and power.",
			Price: 32, ClassTime: "19:00", DaysOfWeek: pq.StringArray{"Tuesday", "Thursday"},
			WhatToBring: pq.StringArray{"Boxing gloves", "Hand wraps", "Water bottle", "Athletic shoes", "Mouthguard (optional)"},
		},
		{
			ID: "class-7", Name: "Morning Vinyasa", Instructor: "Sarah Mitchell", Duration: "PT1H", TotalSpots: 20,
			ImageURL: photo(3822906), Category: "Yoga", Level: "Beginner", Location: "Studio A, 2nd Floor",
			Description: "Start your day with gentle flowing movements and mindful breathing. Perfect for all levels.",
			Price: 20, ClassTime: "07:00", DaysOfWeek: pq.StringArray(weekdays),
			WhatToBring: pq.StringArray{"Yoga mat", "Water bottle", "Comfortable clothing", "Yoga blocks (optional)"},
		},
		{
			ID: "class-8", Name: "Kettlebell Power", Instructor: "Alex Chen", Duration: "PT45M", TotalSpots: 12,
			ImageURL: photo(2261482), Category: "Strength", Level: "Intermediate", Location: "Weight Room",
			Description: "Dynamic kettlebell training to build explosive strength and power. Great for functional fitness.",
			Price: 28, ClassTime: "12:00", DaysOfWeek: pq.StringArray(tts),
			WhatToBring: pq.StringArray{"Water bottle", "Towel", "Athletic shoes", "Workout gloves (optional)"},
		},
		{
			ID: "class-9", Name: "Restorative Yoga", Instructor: "Sarah Mitchell", Duration: "PT1H15M", TotalSpots: 15,
			ImageURL: photo(3822220), Category: "Yoga", Level: "Beginner", Location: "Studio A, 2nd Floor",
			Description: "Relax and restore with gentle poses held for longer periods. Perfect for stress relief and recovery.",
			Price: 24, ClassTime: "20:00", DaysOfWeek: pq.StringArray{"Wednesday", "Sunday"},
			WhatToBring: pq.StringArray{"Yoga mat", "Blanket", "Eye pillow (optional)", "Comfortable loose clothing"},
		},
		{
			ID: "class-10", Name: "Boot Camp Challenge", Instructor: "Mike Johnson", Duration: "PT1H", TotalSpots: 20,
			ImageURL: photo(4164853), Category: "Cardio", Level: "Advanced", Location: "Main Gym Floor",
			Description: "Military-inspired workout combining cardio, strength, and agility drills. Prepare to be challenged!",
			Price: 35, ClassTime: "06:00", DaysOfWeek: pq.StringArray{"Monday", "Wednesday", "Friday", "Saturday"},
			WhatToBring: pq.StringArray{"Water bottle", "Towel", "Athletic shoes", "Energy snack", "Heart rate monitor (optional)"},
		},
		{
			ID: "class-11", Name: "Pilates Reformer", Instructor: "Lisa Anderson", Duration: "PT50M", TotalSpots: 10,
			ImageURL: photo(3775566), Category: "Pilates", Level: "Intermediate", Location: "Studio B, 2nd Floor",
			Description: "Advanced Pilates using the reformer machine for a challenging full-body workout.",
			Price: 30, ClassTime: "10:00", DaysOfWeek: pq.StringArray(tts),
			WhatToBring: pq.StringArray{"Water bottle", "Grip socks", "Comfortable fitted clothing", "Small towel"},
		},
		{
			ID: "class-12", Name: "Kickboxing Cardio", Instructor: "James Wilson", Duration: "PT55M", TotalSpots: 25,
			ImageURL: photo(4753994), Category: "Boxing", Level: "Intermediate", Location: "Boxing Ring",
			Description: "High-energy kickboxing workout combining martial arts techniques with cardio conditioning.",
			Price: 30, ClassTime: "19:00", DaysOfWeek: pq.StringArray(mwf),
			WhatToBring: pq.StringArray{"Boxing gloves", "Hand wraps", "Water bottle", "Athletic shoes", "Towel"},
		},
		{
			ID: "class-13", Name: "CrossFit WOD", Instructor: "Alex Chen", Duration: "PT1H", TotalSpots: 15,
			ImageURL: photo(1552106), Category: "Strength", Level: "Advanced", Location: "Main Gym Floor",
			Description: "Workout of the Day featuring Olympic lifts, gymnastics, and metabolic conditioning.",
			Price: 32, ClassTime: "06:30", DaysOfWeek: pq.StringArray(weekdays),
			WhatToBring: pq.StringArray{"Water bottle", "Towel", "Wrist wraps", "Athletic shoes", "Jump rope (optional)"},
		},
		{
			ID: "class-14", Name: "Zumba Dance Party", Instructor: "Emma Davis", Duration: "PT50M", TotalSpots: 30,
			ImageURL: photo(3775540), Category: "Cardio", Level: "Beginner", Location: "Studio A, 2nd Floor",
			Description: "Fun Latin-inspired dance fitness class that feels more like a party than a workout!",
			Price: 22, ClassTime: "18:30", DaysOfWeek: pq.StringArray{"Tuesday", "Thursday"},
			WhatToBring: pq.StringArray{"Water bottle", "Dance shoes or sneakers", "Comfortable clothing", "Positive energy"},
		},
		{
			ID: "class-15", Name: "Core & Abs Blast", Instructor: "Lisa Anderson", Duration: "PT30M", TotalSpots: 20,
			ImageURL: photo(3775164), Category: "Pilates", Level: "All Levels", Location: "Studio B, 2nd Floor",
			Description: "Intense 30-minute core workout targeting all abdominal muscles. Short but effective!",
			Price: 18, ClassTime: "13:00", DaysOfWeek: pq.StringArray{"Monday", "Wednesday", "Friday", "Sunday"},
			WhatToBring: pq.StringArray{"Mat", "Water bottle", "Towel", "Comfortable athletic wear"},
		},
	}
}

type sessionRow struct {
	classID   int
	dayOffset int
	time      string
	spotsLeft int
}

// sessionRows are numbered session-1 .. session-54 in order.
var sessionRows = []sessionRow{
	{1, 2, "18:00", 5}, {1, 5, "18:00", 8}, {1, 9, "18:00", 12}, {1, 16, "18:00", 15},
	{2, 1, "07:30", 12}, {2, 3, "07:30", 15}, {2, 8, "07:30", 18},
	{3, 1, "17:00", 3}, {3, 4, "17:00", 7}, {3, 7, "17:00", 10}, {3, 14, "17:00", 12},
	{4, 2, "08:00", 8}, {4, 4, "19:00", 15}, {4, 6, "08:00", 20}, {4, 11, "19:00", 22},
	{5, 1, "09:00", 10}, {5, 3, "15:00", 12}, {5, 10, "09:00", 14},
	{6, 2, "19:00", 6}, {6, 5, "18:00", 10}, {6, 9, "19:00", 14}, {6, 12, "18:00", 16},
	{7, 1, "07:00", 15}, {7, 2, "07:00", 16}, {7, 3, "07:00", 17}, {7, 4, "07:00", 18}, {7, 8, "07:00", 18},
	{8, 2, "12:00", 7}, {8, 6, "17:00", 9}, {8, 13, "12:00", 11},
	{9, 3, "20:00", 12}, {9, 10, "20:00", 13},
	{10, 1, "06:00", 4}, {10, 3, "06:00", 8}, {10, 5, "06:00", 12}, {10, 8, "06:00", 15},
	{11, 2, "10:00", 2}, {11, 7, "14:00", 5}, {11, 14, "10:00", 8},
	{12, 1, "19:00", 9}, {12, 4, "18:00", 14}, {12, 8, "19:00", 18}, {12, 11, "18:00", 20},
	{13, 2, "17:00", 6}, {13, 5, "18:00", 9}, {13, 9, "17:00", 12},
	{14, 1, "18:30", 14}, {14, 3, "18:30", 20}, {14, 6, "18:30", 25}, {14, 10, "18:30", 28},
	{15, 1, "13:00", 11}, {15, 2, "13:00", 14}, {15, 4, "13:00", 16}, {15, 7, "13:00", 18},
}

// DateFromNow formats the calendar day offset days after now, in UTC.
func DateFromNow(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, days).Format("2006-01-02")
}

// Sessions returns the demo sessions dated relative to now.
func Sessions(now time.Time) []gym.Session {
	out := make([]gym.Session, 0, len(sessionRows))
	for i, row := range sessionRows {
		out = append(out, gym.Session{
			ID:        fmt.Sprintf("session-%d", i+1),
			ClassID:   fmt.Sprintf("class-%d", row.classID),
			Date:      DateFromNow(now, row.dayOffset),
			Time:      row.time,
			SpotsLeft: row.spotsLeft,
		})
	}
	return out
}

type bookingRow struct {
	userKey      string
	session      int
	dayOffset    int
	price        float64
	cancelled    bool
	createdAgo   int
	cancelledAgo int
}

var bookingRows = []bookingRow{
	{userKey: "1", session: 1, dayOffset: 2, price: 25, createdAgo: 2},
	{userKey: "1", session: 12, dayOffset: 2, price: 28, createdAgo: 1},
	{userKey: "1", session: 23, dayOffset: 1, price: 20, createdAgo: 3},
	{userKey: "1", session: 33, dayOffset: -3, price: 35, createdAgo: 4},
	{userKey: "1", session: 5, dayOffset: -7, price: 30, cancelled: true, createdAgo: 7, cancelledAgo: 6},
	{userKey: "2", session: 2, dayOffset: 5, price: 25, createdAgo: 1},
	{userKey: "2", session: 6, dayOffset: 3, price: 30, createdAgo: 2},
	{userKey: "2", session: 8, dayOffset: 1, price: 25, createdAgo: 3},
	{userKey: "2", session: 19, dayOffset: 2, price: 32, createdAgo: 4},
	{userKey: "2", session: 28, dayOffset: 2, price: 28, createdAgo: 5},
	{userKey: "2", session: 40, dayOffset: 1, price: 30, createdAgo: 6},
	{userKey: "2", session: 47, dayOffset: 1, price: 22, createdAgo: 7},
	{userKey: "2", session: 16, dayOffset: 1, price: 22, createdAgo: 8},
	{userKey: "2", session: 24, dayOffset: 2, price: 20, createdAgo: 9},
	{userKey: "2", session: 44, dayOffset: 2, price: 32, createdAgo: 10},
	{userKey: "2", session: 51, dayOffset: 1, price: 18, createdAgo: 11},
	{userKey: "2", session: 9, dayOffset: 4, price: 25, cancelled: true, createdAgo: 12, cancelledAgo: 11},
	{userKey: "2", session: 31, dayOffset: 3, price: 24, createdAgo: 13},
}

// Bookings returns the demo bookings for the given user ids, keyed by
// DemoUser.Key. Rows whose user is missing from userIDs are skipped.
func Bookings(now time.Time, userIDs map[string]string) []booking.Booking {
	out := make([]booking.Booking, 0, len(bookingRows))
	for i, row := range bookingRows {
		userID, ok := userIDs[row.userKey]
		if !ok {
			continue
		}
		created := now.AddDate(0, 0, -row.createdAgo)
		b := booking.Booking{
			ID:          fmt.Sprintf("booking-%03d", i+1),
			UserID:      userID,
			SessionID:   fmt.Sprintf("session-%d", row.session),
			Status:      api.StatusConfirmed,
			BookingDate: DateFromNow(now, row.dayOffset),
			TotalPrice:  row.price,
			CreatedAt:   created,
		}
		if row.cancelled {
			cancelled := now.AddDate(0, 0, -row.cancelledAgo)
			b.Status = api.StatusCancelled
			b.CancelledAt = &cancelled
		} else {
			b.ConfirmedAt = &created
		}
		out = append(out, b)
	}
	return out
}
