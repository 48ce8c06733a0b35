// Package api holds the wire types shared by the storefront client and the
// REST backend.
package api

import (
	"strings"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, RoleAdmin)
}

type GymClass struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Instructor  string   `json:"instructor"`
	Duration    string   `json:"duration"` // ISO-8601, e.g. PT1H30M
	TotalSpots  int      `json:"totalSpots"`
	ImageURL    string   `json:"imageUrl"`
	Category    string   `json:"category"`
	Level       string   `json:"level"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ClassTime   string   `json:"classTime"` // HH:MM
	DaysOfWeek  []string `json:"daysOfWeek"`
	WhatToBring []string `json:"whatToBring"`
}

// ClassSession is one dated occurrence of a class. Class is an optional
// snapshot of the parent class; ClassID is always set.
type ClassSession struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"classId"`
	Class     *GymClass `json:"gymflowClass,omitempty"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Time      string    `json:"time,omitempty"`
	SpotsLeft int       `json:"spotsLeft"`
}

type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	SessionID   string        `json:"sessionId"`
	Session     *ClassSession `json:"classSession,omitempty"`
	Status      string        `json:"status"`
	BookingDate string        `json:"bookingDate,omitempty"`
	TotalPrice  float64       `json:"totalPrice"`
	CreatedAt   time.Time     `json:"createdAt"`
	ConfirmedAt *time.Time    `json:"confirmedAt"`
	CancelledAt *time.Time    `json:"cancelledAt,omitempty"`
}

// ClassID resolves the class a booking belongs to through its session.
func (b Booking) ClassID() string {
	if b.Session == nil {
		return ""
	}
	if b.Session.ClassID != "" {
		return b.Session.ClassID
	}
	if b.Session.Class != nil {
		return b.Session.Class.ID
	}
	return ""
}

// HasStatus compares status case-insensitively.
func (b Booking) HasStatus(status string) bool {
	return strings.EqualFold(b.Status, status)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type BookingRequest struct {
	ClassSession string  `json:"classSession" binding:"required"`
	ClassName    string  `json:"className"`
	Amount       float64 `json:"amount" binding:"gte=0"`
}

// ConfirmBookingRequest carries the checkout reference returned in the
// success redirect.
type ConfirmBookingRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type CreateClassRequest struct {
	Name        string   `json:"name" binding:"required"`
	Instructor  string   `json:"instructor" binding:"required"`
	Duration    string   `json:"duration" binding:"required"`
	TotalSpots  int      `json:"totalSpots" binding:"required,gt=0"`
	ImageURL    string   `json:"imageUrl"`
	Category    string   `json:"category" binding:"required"`
	Level       string   `json:"level"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"gte=0"`
	ClassTime   string   `json:"classTime" binding:"omitempty,datetime=15:04"`
	DaysOfWeek  []string `json:"daysOfWeek"`
	WhatToBring []string `json:"whatToBring"`
}

type UpdateClassRequest struct {
	ID string `json:"id"`
	CreateClassRequest
}

type CreateSessionRequest struct {
	ClassID   string `json:"classId" binding:"required"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Time      string `json:"time" binding:"omitempty,datetime=15:04"`
	SpotsLeft int    `json:"spotsLeft" binding:"gte=0"`
}

type UpdateSessionRequest struct {
	ID        string `json:"id"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Time      string `json:"time" binding:"omitempty,datetime=15:04"`
	SpotsLeft int    `json:"spotsLeft" binding:"gte=0"`
}
