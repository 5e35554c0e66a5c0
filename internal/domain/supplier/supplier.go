// Package supplier defines the integration port for external product
// suppliers: the gateway contract, the raw record shapes suppliers return,
// and the sync run aggregate that tracks one synchronization pass.
package supplier

import "fmt"

// Code identifies an external product supplier
type Code string

const (
	// CodeSyscom is the SYSCOM wholesale API (OAuth bearer auth)
	CodeSyscom Code = "syscom"
	// CodeTecnosinergia is the TECNOSINERGIA API (static token auth)
	CodeTecnosinergia Code = "tecnosinergia"
)

// AllCodes returns every concrete supplier code
func AllCodes() []Code {
	return []Code{CodeSyscom, CodeTecnosinergia}
}

// IsValid checks if the supplier code is a known supplier
func (c Code) IsValid() bool {
	switch c {
	case CodeSyscom, CodeTecnosinergia:
		return true
	}
	return false
}

// String returns the string representation
func (c Code) String() string {
	return string(c)
}

// ParseCode converts a string into a Code
func ParseCode(s string) (Code, error) {
	c := Code(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSupplier, s)
	}
	return c, nil
}
