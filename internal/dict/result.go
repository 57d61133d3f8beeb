package dict

import "strings"

// Result is the display form of a successful lookup.
type Result struct {
	Text          string  `json:"text" yaml:"text"`
	Transcription string  `json:"transcription,omitempty" yaml:"transcription,omitempty"`
	Entries       []Entry `json:"entries" yaml:"entries"`
}

// Entry is one flattened translation line.
type Entry struct {
	Text     string `json:"text" yaml:"text"`
	Pos      string `json:"pos,omitempty" yaml:"pos,omitempty"`
	Means    string `json:"means,omitempty" yaml:"means,omitempty"`
	Synonyms string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
}

// NewResult flattens definitions into a Result. It returns nil when defs
// holds no definitions.
func NewResult(defs []Definition) *Result {
	if len(defs) == 0 {
		return nil
	}

	r := &Result{
		Text: defs[0].Text,
	}
	for _, d := range defs {
		if r.Transcription == "" && d.Ts != "" {
			r.Transcription = d.Ts
		}
		for _, tr := range d.Tr {
			pos := tr.Pos
			if pos == "" {
				pos = d.Pos
			}
			r.Entries = append(r.Entries, Entry{
				Text:     tr.Text,
				Pos:      pos,
				Means:    joinAttributes(tr.Mean),
				Synonyms: joinAttributes(tr.Syn),
			})
		}
	}
	return r
}

// String renders one line per entry: the translation followed by its synonyms.
func (r *Result) String() string {
	var sb strings.Builder
	for i, e := range r.Entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Text)
		if e.Synonyms != "" {
			sb.WriteString(", ")
			sb.WriteString(e.Synonyms)
		}
	}
	return sb.String()
}

func joinAttributes(attrs []Attribute) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if a.Text != "" {
			parts = append(parts, a.Text)
		}
	}
	return strings.Join(parts, ", ")
}
