// Package bundle decodes and encodes the JS wrapper that generated page-data
// chunks use to embed their JSON payload.
//
// A chunk is a single expression of the form
//
//	const e=JSON.parse('<payload>');export{e as data};
//
// where the binding name is either `e` or `t` and the payload delimiter is
// either a single quote or a backtick. All literal backslashes inside the
// payload are doubled so the string survives JSON.parse. Decode accepts all
// four shapes; Encode always emits the single-quote form, so backtick chunks
// are normalized to the canonical delimiter on rewrite.
package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Variant selects which binding name wraps the payload on encode.
type Variant string

const (
	// VariantPrimary is the `const e` binding.
	VariantPrimary Variant = "e"
	// VariantSecondary is the `const t` binding.
	VariantSecondary Variant = "t"
)

// ErrNoTemplate is returned when text matches none of the four wrapper
// templates.
var ErrNoTemplate = errors.New("no wrapper template matched")

// Document is a decoded payload. The path git.contributors holds the
// contributor list; every other field is opaque and carried through the
// round trip unchanged.
type Document map[string]any

type template struct {
	prefix string
	suffix string
}

// quoted is delimiter-A, the canonical form. backticked is delimiter-B,
// accepted on decode only.
func wrappers(v Variant) (quoted, backticked template) {
	name := string(v)
	quoted = template{
		prefix: "const " + name + "=JSON.parse('",
		suffix: "');export{" + name + " as data};",
	}
	backticked = template{
		prefix: "const " + name + "=JSON.parse(`",
		suffix: "`);export{" + name + " as data};",
	}
	return quoted, backticked
}

func (t template) matches(raw string) bool {
	return strings.HasPrefix(raw, t.prefix) && strings.HasSuffix(raw, t.suffix)
}

func (t template) strip(raw string) string {
	return strings.TrimSuffix(strings.TrimPrefix(raw, t.prefix), t.suffix)
}

// Decode parses a full chunk file into a Document. It tries all four
// templates; ErrNoTemplate means the file is not a recognized chunk, a JSON
// error means the embedded payload is corrupt. Both are fatal for the file.
func Decode(raw string) (Document, error) {
	for _, v := range []Variant{VariantPrimary, VariantSecondary} {
		quoted, backticked := wrappers(v)
		for _, t := range []template{quoted, backticked} {
			if !t.matches(raw) {
				continue
			}
			payload := strings.ReplaceAll(t.strip(raw), `\\`, `\`)
			var doc Document
			if err := json.Unmarshal([]byte(payload), &doc); err != nil {
				return nil, fmt.Errorf("payload is not valid JSON: %w", err)
			}
			return doc, nil
		}
	}
	return nil, ErrNoTemplate
}

// Encode serializes doc as compact JSON, doubles every backslash, and wraps
// the result with the template of the given variant. Output always uses the
// single-quote delimiter regardless of what Decode accepted.
func Encode(doc Document, variant Variant) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	payload := strings.TrimSuffix(buf.String(), "\n")
	payload = strings.ReplaceAll(payload, `\`, `\\`)
	quoted, _ := wrappers(variant)
	return quoted.prefix + payload + quoted.suffix, nil
}

// Contributors returns the record list at git.contributors, or nil when the
// path is absent or not a list.
func (d Document) Contributors() []any {
	git, ok := d["git"].(map[string]any)
	if !ok {
		return nil
	}
	list, ok := git["contributors"].([]any)
	if !ok {
		return nil
	}
	return list
}

// SetContributors writes the record list back at git.contributors, creating
// the path if needed.
func (d Document) SetContributors(list []any) {
	git, ok := d["git"].(map[string]any)
	if !ok {
		git = map[string]any{}
		d["git"] = git
	}
	git["contributors"] = list
}
