package mode

// Mode is the retrieval strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid fuses the keyword and semantic signals.
	Hybrid   Mode = "hybrid"
	Semantic Mode = "semantic"
	Keyword  Mode = "keyword"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Keyword
}

// UsesKeyword reports whether the keyword branch runs for this mode.
func (m Mode) UsesKeyword() bool { return m == Keyword || m == Hybrid }

// UsesSemantic reports whether the semantic branch runs for this mode.
func (m Mode) UsesSemantic() bool { return m == Semantic || m == Hybrid }
