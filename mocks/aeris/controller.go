// Package aeris provides test doubles for the aeris front end's collaborators.
package aeris

//go:generate spygen Controller --name ControllerSpy

// Controller draws a view and releases it.
type Controller interface {
	Render(data any) error
	Close() error
}

// NewMockController returns a ControllerSpy with an empty call history.
// Both methods return a nil error until configured otherwise.
func NewMockController() *ControllerSpy {
	return NewControllerSpy()
}
