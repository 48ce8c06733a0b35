package admin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/duration"
)

const (
	DefaultImageURL   = "https://images.pexels.com/photos/416809/pexels-photo-416809.jpeg?auto=compress&cs=tinysrgb&w=800"
	DefaultCategory   = "Cardio"
	DefaultLevel      = "All Levels"
	DefaultLocation   = "Main Gym Floor"
	DefaultPrice      = 25
	DefaultTotalSpots = 20
	DefaultClassTime  = "09:00"
)

var weekdays = map[string]bool{
	"MONDAY": true, "TUESDAY": true, "WEDNESDAY": true, "THURSDAY": true,
	"FRIDAY": true, "SATURDAY": true, "SUNDAY": true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("minutestep", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%duration.StepMinutes == 0
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return weekdays[strings.ToUpper(fl.Field().String())]
	})
	return v
}

// ClassForm is the class editor. Duration is edited in minutes and sent as
// an ISO-8601 duration.
type ClassForm struct {
	ID              string
	Name            string   `validate:"required"`
	Instructor      string   `validate:"required"`
	DurationMinutes int      `validate:"min=5,max=180,minutestep"`
	TotalSpots      int      `validate:"gt=0"`
	ImageURL        string   `validate:"omitempty,url"`
	Category        string   `validate:"required"`
	Level           string
	Location        string
	Description     string
	Price           float64  `validate:"gte=0"`
	ClassTime       string   `validate:"omitempty,datetime=15:04"`
	DaysOfWeek      []string `validate:"dive,weekday"`
	WhatToBring     []string `validate:"dive,required"`
}

func classFormFrom(c api.GymClass) ClassForm {
	classTime := c.ClassTime
	if classTime == "" {
		classTime = DefaultClassTime
	}
	return ClassForm{
		ID:              c.ID,
		Name:            c.Name,
		Instructor:      c.Instructor,
		DurationMinutes: duration.ParseISO(c.Duration),
		TotalSpots:      c.TotalSpots,
		ImageURL:        c.ImageURL,
		Category:        c.Category,
		Level:           c.Level,
		Location:        c.Location,
		Description:     c.Description,
		Price:           c.Price,
		ClassTime:       classTime,
		DaysOfWeek:      append([]string{}, c.DaysOfWeek...),
		WhatToBring:     append([]string{}, c.WhatToBring...),
	}
}

func (f ClassForm) createRequest() api.CreateClassRequest {
	return api.CreateClassRequest{
		Name:        f.Name,
		Instructor:  f.Instructor,
		Duration:    duration.FormatISO(f.DurationMinutes),
		TotalSpots:  f.TotalSpots,
		ImageURL:    f.ImageURL,
		Category:    f.Category,
		Level:       f.Level,
		Location:    f.Location,
		Description: f.Description,
		Price:       f.Price,
		ClassTime:   f.ClassTime,
		DaysOfWeek:  nonNil(f.DaysOfWeek),
		WhatToBring: nonNil(f.WhatToBring),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type SessionForm struct {
	ID        string
	ClassID   string `validate:"required"`
	Date      string `validate:"required,datetime=2006-01-02"`
	Time      string `validate:"omitempty,datetime=15:04"`
	SpotsLeft int    `validate:"gte=0"`
}

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// FormError is returned when a form fails validation; nothing is sent to
// the backend.
type FormError struct {
	Fields []FieldError
}

func (e *FormError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func validateForm(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := &FormError{}
	for _, v := range verrs {
		fe.Fields = append(fe.Fields, FieldError{Field: v.Field(), Tag: v.Tag(), Message: fieldMessage(v)})
	}
	return fe
}

func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "minutestep":
		return fmt.Sprintf("%s must be a multiple of %d", err.Field(), duration.StepMinutes)
	case "datetime":
		return fmt.Sprintf("%s must match %s", err.Field(), err.Param())
	case "weekday":
		return fmt.Sprintf("%s must be a weekday name", err.Field())
	default:
		return err.Field() + " is invalid"
	}
}
