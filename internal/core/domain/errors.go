package domain

import "errors"

var (
	// ErrInsufficientRoutePoints means a terrain sampling operation was
	// requested for a route with fewer than two points. Raised before any
	// network activity.
	ErrInsufficientRoutePoints = errors.New("route must have at least 2 points to sample")

	// ErrRouteTooShort means a drawing session was committed with fewer than
	// two points. The session is left unchanged.
	ErrRouteTooShort = errors.New("route must have at least 2 points to commit")

	// ErrNotDrawing means a point was added to a session outside drawing mode.
	ErrNotDrawing = errors.New("session is not in drawing mode")

	// ErrSessionNotFound means no session exists with the given ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyProfile means a classification was requested for a profile with
	// no points.
	ErrEmptyProfile = errors.New("profile has no points")
)
