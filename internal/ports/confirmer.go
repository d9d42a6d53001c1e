package ports

// Confirmer asks the user a yes/no question before a destructive step.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}
