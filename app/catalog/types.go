package catalog

// Product is one watched catalog entry. An empty Versions list means any
// version of the product matches. Loaded once per run, immutable after.
type Product struct {
	Name     string
	Editor   string
	Versions []string
}
