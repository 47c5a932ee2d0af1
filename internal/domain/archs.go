package domain

// Architecture describes one model variant the external engine accepts,
// together with the positional limits it was built with.
type Architecture struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	MaxSourcePositions int    `json:"maxSourcePositions"`
	MaxTargetPositions int    `json:"maxTargetPositions"`
	Description        string `json:"description,omitempty"`
}

var architectureCatalog = []Architecture{
	{
		ID:                 "seq2seq_base",
		Name:               "Base",
		MaxSourcePositions: 1024,
		MaxTargetPositions: 1024,
		Description:        "Standard 6-layer encoder/decoder with dense attention.",
	},
	{
		ID:                 "seq2seq_large",
		Name:               "Large",
		MaxSourcePositions: 1024,
		MaxTargetPositions: 1024,
		Description:        "12-layer encoder/decoder with dense attention.",
	},
	{
		ID:                 "seq2seq_large_8k",
		Name:               "Large 8K",
		MaxSourcePositions: 8192,
		MaxTargetPositions: 1024,
		Description:        "Large variant with block-sparse attention for 8K-token inputs.",
	},
	{
		ID:                 "seq2seq_large_16k",
		Name:               "Large 16K",
		MaxSourcePositions: 16384,
		MaxTargetPositions: 1024,
		Description:        "Long-document variant with pooled attention for 16K-token inputs.",
	},
}

// Architectures returns the known model variants in catalog order.
func Architectures() []Architecture {
	out := make([]Architecture, len(architectureCatalog))
	copy(out, architectureCatalog)
	return out
}

// ArchitectureByID looks up one catalog entry.
func ArchitectureByID(id string) (Architecture, bool) {
	for _, arch := range architectureCatalog {
		if arch.ID == id {
			return arch, true
		}
	}
	return Architecture{}, false
}
