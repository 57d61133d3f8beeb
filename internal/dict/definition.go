package dict

// Definition is one dictionary article as returned by the lookup API:
// a headword with its part of speech, transcription and translations.
type Definition struct {
	Text string        `json:"text"`
	Pos  string        `json:"pos,omitempty"`
	Ts   string        `json:"ts,omitempty"`
	Tr   []Translation `json:"tr,omitempty"`
}

// Translation is a single translation of a Definition.
type Translation struct {
	Text string      `json:"text"`
	Pos  string      `json:"pos,omitempty"`
	Gen  string      `json:"gen,omitempty"`
	Syn  []Attribute `json:"syn,omitempty"`
	Mean []Attribute `json:"mean,omitempty"`
	Ex   []Example   `json:"ex,omitempty"`
}

// Attribute is a synonym or meaning attached to a Translation.
type Attribute struct {
	Text string `json:"text"`
	Pos  string `json:"pos,omitempty"`
	Gen  string `json:"gen,omitempty"`
}

// Example is a usage example with its translations.
type Example struct {
	Text string      `json:"text"`
	Tr   []Attribute `json:"tr,omitempty"`
}
