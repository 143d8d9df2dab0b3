package model

// Map dimensions of the shared world grid
const (
	MapWidth  = 500
	MapHeight = 500
)
