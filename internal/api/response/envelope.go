// Package response defines the JSON envelope every /api/v1 response is wrapped in.
package response

import "time"

// Envelope is the uniform body of API responses.
type Envelope[T any] struct {
	Success   bool      `json:"success" example:"true"`
	Message   string    `json:"message" example:"User retrieved successfully"`
	Data      T         `json:"data"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-01T12:00:00Z"`
}

// Now is the envelope clock. Tests may replace it.
var Now = func() time.Time { return time.Now().UTC() }

// Success builds a successful envelope around data.
func Success[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Success: true, Message: message, Data: data, Timestamp: Now()}
}

// Failure builds an error envelope. data carries error details such as a field
// map, or nil.
func Failure[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Success: false, Message: message, Data: data, Timestamp: Now()}
}
