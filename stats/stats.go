// Package stats counts what one scan over the archive did.
package stats

// Summary is filled in synchronously while a scan runs and logged once at
// the end.
type Summary struct {
	Scanned        int
	Delivered      int
	DryRun         int
	Duplicates     int
	Unrelated      int
	Filtered       int
	ParseErrors    int
	DeliveryErrors int
	LastError      error
}

// LogAttrs renders the summary as slog key-value pairs.
func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"delivered", s.Delivered,
		"duplicates", s.Duplicates,
		"unrelated", s.Unrelated,
	}
	if s.DryRun > 0 {
		attrs = append(attrs, "dryRun", s.DryRun)
	}
	if s.Filtered > 0 {
		attrs = append(attrs, "filtered", s.Filtered)
	}
	if s.ParseErrors > 0 {
		attrs = append(attrs, "parseErrors", s.ParseErrors)
	}
	if s.DeliveryErrors > 0 {
		attrs = append(attrs, "deliveryErrors", s.DeliveryErrors)
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}
