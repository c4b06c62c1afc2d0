package resolution

// Algorithm is one entry of the fixed execution-algorithm catalog.
type Algorithm struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Known algorithm identifiers.
const (
	AlgoVWAP      = "vwap"
	AlgoTWAP      = "twap"
	AlgoPOV       = "pov"
	AlgoShortfall = "implementation_shortfall"
)

var catalog = []Algorithm{
	{
		ID:          AlgoVWAP,
		Name:        "VWAP",
		Description: "Executes a large order over time tracking the volume-weighted average price",
	},
	{
		ID:          AlgoTWAP,
		Name:        "TWAP",
		Description: "Executes evenly over a specified time period",
	},
	{
		ID:          AlgoPOV,
		Name:        "POV",
		Description: "Executes as a target percentage of market volume",
	},
	{
		ID:          AlgoShortfall,
		Name:        "Implementation Shortfall",
		Description: "Balances urgency and market impact dynamically",
	},
}

// Catalog returns the fixed algorithm catalog in stable order. The
// operator picks from this list; there is no default.
func Catalog() []Algorithm {
	out := make([]Algorithm, len(catalog))
	copy(out, catalog)
	return out
}

// AlgorithmByID looks up a catalog entry.
func AlgorithmByID(id string) (Algorithm, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Algorithm{}, false
}
