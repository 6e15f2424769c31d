package writer

// Span is a half-open range of record indexes.
type Span struct {
	Start, End int
}

// Len returns the number of records in the span.
func (s Span) Len() int { return s.End - s.Start }

// Chunks splits n records into consecutive spans of at most size records.
func Chunks(n, size int) []Span {
	if n <= 0 || size <= 0 {
		return nil
	}
	out := make([]Span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		out = append(out, Span{Start: start, End: min(start+size, n)})
	}
	return out
}
