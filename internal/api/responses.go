package api

type ErrorResponse struct {
	Error string `json:"error" example:"No spots available"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Booking cancelled successfully"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store,omitempty" example:"memory"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
	RefreshToken string `json:"refreshToken,omitempty"`
}

type BookingResponse struct {
	URL string `json:"url" example:"/booking/success?session_id=booking-001"`
}
