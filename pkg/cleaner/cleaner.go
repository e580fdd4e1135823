// Package cleaner provides the interface shared by text cleaning stages.
// Cleaners transform extracted document text one step closer to the final
// decision markup.
package cleaner

// Cleaner transforms text into a cleaner form.
type Cleaner interface {
	// Clean transforms the input text.
	// The output format depends on the implementation (plain text, markup, etc.).
	Clean(text string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
