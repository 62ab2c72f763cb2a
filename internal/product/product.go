// Package product models the run-time target a processed asset is generated
// for. The selected product is advisory: the pipeline engine flags filters
// whose output is not loadable under the selection, but never blocks them.
package product

import (
	"fmt"
	"strings"
)

// Product identifies a run-time target platform.
type Product string

// Supported run-time targets. None means no restriction: every filter is
// considered compatible.
const (
	None  Product = ""
	XML   Product = "xml"
	Win32 Product = "win32"
	Amd64 Product = "amd64"
)

// All returns the selectable products, excluding None.
func All() []Product {
	return []Product{XML, Win32, Amd64}
}

// String returns the product label, or "none" for the empty selection.
func (p Product) String() string {
	if p == None {
		return "none"
	}

	return string(p)
}

// Parse converts a product label to a Product (case-insensitive).
// "none" and the empty string map to None.
func Parse(s string) (Product, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "xml":
		return XML, nil
	case "win32":
		return Win32, nil
	case "amd64":
		return Amd64, nil
	default:
		return None, fmt.Errorf("unknown product %q, valid values: xml, win32, amd64, none", s)
	}
}
