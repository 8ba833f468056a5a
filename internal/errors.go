package internal

import "fmt"

// InvalidAddressError reports text that is not a valid A1 address or
// column label.
type InvalidAddressError struct {
	Address string
	Reason  string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Address, e.Reason)
}

func invalidAddress(address, format string, args ...any) error {
	return &InvalidAddressError{Address: address, Reason: fmt.Sprintf(format, args...)}
}
