package allocator

// Ratio ...
type Ratio struct {
	Nominator   int
	Denominator int
}

// NewRatio ...
func NewRatio(nominator int, denominator int) Ratio {
	return Ratio{
		Nominator:   nominator,
		Denominator: denominator,
	}
}

// MulInt returns v * r rounded to the nearest int, halves away from zero.
// v and r must not be negative.
func (r Ratio) MulInt(v int) int {
	num := int64(v) * int64(r.Nominator)
	den := int64(r.Denominator)
	return int((2*num + den) / (2 * den))
}
