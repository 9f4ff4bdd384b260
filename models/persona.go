package models

// Persona is one of the four stakeholder roles.
type Persona string

const (
	PersonaHosts        Persona = "Hosts"
	PersonaGuests       Persona = "Guests"
	PersonaInvestors    Persona = "Investors"
	PersonaPolicymakers Persona = "Policymakers"
)

// Personas lists every valid persona in presentation order.
var Personas = []Persona{PersonaHosts, PersonaGuests, PersonaInvestors, PersonaPolicymakers}

// Valid reports whether p is one of the enumerated personas.
func (p Persona) Valid() bool {
	switch p {
	case PersonaHosts, PersonaGuests, PersonaInvestors, PersonaPolicymakers:
		return true
	}
	return false
}

// PersonaMetric is one headline figure on the persona panel. Text is set
// instead of Value for categorical answers such as an area name.
type PersonaMetric struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
	Unit  string  `json:"unit,omitempty"`
}

// PersonaView is the persona panel's view model.
type PersonaView struct {
	Persona  Persona         `json:"persona"`
	Heading  string          `json:"heading"`
	Guidance []string        `json:"guidance"`
	Metrics  []PersonaMetric `json:"metrics"`
	NoData   bool            `json:"no_data"`
}

// Metric returns the metric with the given key.
func (v *PersonaView) Metric(key string) (PersonaMetric, bool) {
	if v == nil {
		return PersonaMetric{}, false
	}
	for _, m := range v.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return PersonaMetric{}, false
}
