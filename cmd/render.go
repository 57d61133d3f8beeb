/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/valpere/peredict/internal/dict"
)

// writeResult renders a lookup result as text, json or yaml.
func writeResult(w io.Writer, format string, r *dict.Result) error {
	switch format {
	case "json":
		return writeJSON(w, r)
	case "yaml":
		return yaml.NewEncoder(w).Encode(r)
	case "", "text":
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	if r.Transcription != "" {
		fmt.Fprintf(w, "%s [%s]\n", r.Text, r.Transcription)
	} else {
		fmt.Fprintln(w, r.Text)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", e.Pos, e.Text, e.Synonyms, e.Means)
	}
	return tw.Flush()
}

type languageRow struct {
	dict.Language `yaml:",inline"`
	Source        bool `json:"source,omitempty" yaml:"source,omitempty"`
	Dest          bool `json:"dest,omitempty" yaml:"dest,omitempty"`
}

// writeLanguages renders the language list, marking the selected pair.
func writeLanguages(w io.Writer, format string, langs []dict.Language, source, dest string) error {
	rows := make([]languageRow, len(langs))
	for i, l := range langs {
		rows[i] = languageRow{Language: l, Source: l.Code == source, Dest: l.Code == dest}
	}

	switch format {
	case "json":
		return writeJSON(w, rows)
	case "yaml":
		return yaml.NewEncoder(w).Encode(rows)
	case "", "text":
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tFAVORITE\tSELECTED")
	for _, r := range rows {
		selected := ""
		switch {
		case r.Source && r.Dest:
			selected = "source,dest"
		case r.Source:
			selected = "source"
		case r.Dest:
			selected = "dest"
		}
		fav := ""
		if r.Favorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Code, r.Name, fav, selected)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
