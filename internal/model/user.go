package model

// User owns a set of bank accounts.
type User struct {
	ID   int
	Name string
}
