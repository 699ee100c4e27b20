package models

import (
	"fmt"
	"math"
	"strings"
)

// UPIFormat describes the fixed layout of a unique personal identifier:
// jurisdiction letter, institution code letter, zero-padded sequence.
type UPIFormat struct {
	Jurisdiction    string
	InstitutionCode string
	Width           int
}

// Prefix is the counter key shared by every UPI issued under this format.
func (f UPIFormat) Prefix() string {
	return strings.ToUpper(f.Jurisdiction + f.InstitutionCode)
}

// Capacity is the largest sequence number representable in Width digits.
func (f UPIFormat) Capacity() int64 {
	return int64(math.Pow10(f.Width)) - 1
}

// Format renders seq into a UPI such as BT007.
func (f UPIFormat) Format(seq int64) string {
	return fmt.Sprintf("%s%0*d", f.Prefix(), f.Width, seq)
}
