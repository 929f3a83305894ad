package analyzer

import "fmt"

// DefaultChecks are the names run when none are configured.
var DefaultChecks = []string{"blank", "static"}

// NewCheck creates a check by name.
func NewCheck(name string) (Check, error) {
	switch name {
	case "blank", "":
		return BlankCheck{MinArea: 4}, nil
	case "static":
		return StaticCheck{Threshold: 0.5}, nil
	case "edge":
		return EdgeCheck{}, nil
	default:
		return nil, fmt.Errorf("unknown check: %s", name)
	}
}

// NewChecks resolves a list of names, DefaultChecks when empty.
func NewChecks(names []string) ([]Check, error) {
	if len(names) == 0 {
		names = DefaultChecks
	}
	checks := make([]Check, 0, len(names))
	for _, n := range names {
		c, err := NewCheck(n)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, nil
}
