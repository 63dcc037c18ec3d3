package ports

// Runner is a long-lived component started and stopped with the process
type Runner interface {
	// Start starts the component in the background
	Start() error

	// Stop stops the component
	Stop() error
}
