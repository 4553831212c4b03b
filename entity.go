// SPDX-License-Identifier: MIT
// Copyright (c) 2026 srcforge
// Source: github.com/srcforge/bsp

package bsp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// outputSepByte is the field separator newer engine branches use inside
// output values. Older branches separate fields with plain commas.
const outputSepByte = 0x1D

// worldspawnClass is the required class of the first entity in the lump.
const worldspawnClass = "worldspawn"

// OutputSep selects the output field separator style used when the entity
// lump is re-encoded.
type OutputSep uint8

// Output separator styles.
const (
	// OutputSepAuto keeps the style observed during decode, falling back
	// to commas when the file had no outputs.
	OutputSepAuto OutputSep = iota
	// OutputSepComma joins output fields with commas.
	OutputSepComma
	// OutputSepControl joins output fields with the 0x1D control byte.
	OutputSepControl
)

// KeyValue is one plain attribute of an entity.
type KeyValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Output is one connection record: when the named event fires, Input is
// invoked on Target with Param after Delay seconds, at most Times times
// (-1 means unlimited).
type Output struct {
	// Name is the firing event, e.g. "OnUser1".
	Name string `json:"name" yaml:"name"`
	// Target names the entities to trigger.
	Target string `json:"target" yaml:"target"`
	// Input is the input to invoke on the target.
	Input string `json:"input" yaml:"input"`
	// Param is the parameter passed to the input, may be empty.
	Param string `json:"param,omitempty" yaml:"param,omitempty"`
	// Delay is the trigger delay in seconds.
	Delay float64 `json:"delay" yaml:"delay"`
	// Times limits how often the output fires; -1 is unlimited.
	Times int32 `json:"times" yaml:"times"`
}

// Entity is one entity record: ordered plain attributes plus ordered
// connection records.
type Entity struct {
	Keys    []KeyValue `json:"keys" yaml:"keys"`
	Outputs []Output   `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Get returns the value for a key, or "" when absent. Key lookup is
// case-sensitive, matching the on-disk form.
func (e *Entity) Get(key string) string {
	for i := range e.Keys {
		if e.Keys[i].Key == key {
			return e.Keys[i].Value
		}
	}

	return ""
}

// Set replaces the value for a key, appending the pair when absent.
func (e *Entity) Set(key, value string) {
	for i := range e.Keys {
		if e.Keys[i].Key == key {
			e.Keys[i].Value = value
			return
		}
	}

	e.Keys = append(e.Keys, KeyValue{Key: key, Value: value})
}

// Class returns the entity's classname attribute.
func (e *Entity) Class() string {
	return e.Get("classname")
}

// Entities is the decoded entity lump: the distinguished world entity plus
// every other entity in file order.
type Entities struct {
	// World is the first entity of the lump; its class is always
	// worldspawn.
	World *Entity
	// List holds all non-world entities.
	List []*Entity
	// Sep is the output separator style observed during decode. Encoding
	// with OutputSepAuto reuses it.
	Sep OutputSep
}

// decodeEntities parses the newline-delimited entity text. Entities are
// delimited by lone "{" / "}" lines and the lump ends with a lone NUL
// byte. The first entity is the world entity and must be worldspawn.
func (b *BSP) decodeEntities(data []byte) (*Entities, error) {
	ents := &Entities{}
	var cur *Entity // nil when between brackets
	seenWorld := false

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSuffix(line, []byte{'\r'})

		switch {
		case len(line) == 1 && line[0] == '{':
			if cur != nil {
				return nil, fmt.Errorf("%w: nesting after %d entities", ErrEntBraces, len(ents.List))
			}

			cur = &Entity{}
			if !seenWorld {
				ents.World = cur
				seenWorld = true
			}

			continue

		case len(line) == 1 && line[0] == '}':
			if cur == nil {
				return nil, fmt.Errorf("%w: closing bracket after %d entities", ErrEntBraces, len(ents.List))
			}

			if cur == ents.World {
				if cur.Class() != worldspawnClass {
					return nil, ErrNoWorldspawn
				}
			} else {
				ents.List = append(ents.List, cur)
			}

			cur = nil

			continue

		case len(line) == 1 && line[0] == 0:
			// NUL line terminates the lump.
			if cur != nil {
				return nil, fmt.Errorf("%w: last entity not closed", ErrEntBraces)
			}
			if !seenWorld {
				return nil, ErrNoWorldspawn
			}

			return ents, nil

		case len(line) == 0:
			continue
		}

		if cur == nil {
			return nil, fmt.Errorf("%w: %q", ErrEntOutsideBrackets, line)
		}

		if err := parseEntityLine(cur, ents, line); err != nil {
			return nil, err
		}
	}

	if cur != nil || !seenWorld {
		return nil, fmt.Errorf("%w: missing terminator", ErrEntBraces)
	}

	return ents, nil
}

// parseEntityLine splits one `"key" "value"` line and classifies it as a
// plain attribute or a connection record.
func parseEntityLine(cur *Entity, ents *Entities, line []byte) error {
	// Values may carry backslash-escaped quotes, so split on the quoted
	// pair boundary rather than bare quotes.
	sep := bytes.Index(line, []byte(`" "`))
	if sep < 0 || len(line) < 2 || line[0] != '"' || line[len(line)-1] != '"' {
		return fmt.Errorf("%w: %q", ErrEntLine, line)
	}

	key := string(line[1:sep])
	value := strings.ReplaceAll(string(line[sep+3:len(line)-1]), `\"`, `"`)

	// Newer branches separate output fields with 0x1D, which cannot
	// appear in a plain value. Comma-separated outputs are ambiguous
	// against ordinary values, so exactly four commas triggers a parse
	// attempt with attribute fallback.
	if strings.IndexByte(value, outputSepByte) >= 0 {
		out, err := parseOutput(key, value, string(rune(outputSepByte)))
		if err != nil {
			return err
		}

		cur.Outputs = append(cur.Outputs, out)
		if ents.Sep == OutputSepAuto {
			ents.Sep = OutputSepControl
		}

		return nil
	}

	if strings.Count(value, ",") == 4 {
		if out, err := parseOutput(key, value, ","); err == nil {
			cur.Outputs = append(cur.Outputs, out)
			if ents.Sep == OutputSepAuto {
				ents.Sep = OutputSepComma
			}

			return nil
		}
	}

	cur.Keys = append(cur.Keys, KeyValue{Key: key, Value: value})

	return nil
}

// parseOutput splits a connection value into its five fields.
func parseOutput(name, value, sep string) (Output, error) {
	fields := strings.Split(value, sep)
	if len(fields) != 5 {
		return Output{}, fmt.Errorf("%w: output %q has %d fields", ErrEntLine, value, len(fields))
	}

	delay, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Output{}, fmt.Errorf("%w: output delay %q", ErrEntLine, fields[3])
	}

	times, err := strconv.ParseInt(fields[4], 10, 32)
	if err != nil {
		return Output{}, fmt.Errorf("%w: output times %q", ErrEntLine, fields[4])
	}

	return Output{
		Name:   name,
		Target: fields[0],
		Input:  fields[1],
		Param:  fields[2],
		Delay:  delay,
		Times:  int32(times),
	}, nil
}

// encodeEntities writes the lump back in line-oriented form, world entity
// first, applying one separator style globally.
func (b *BSP) encodeEntities(ents *Entities) ([]byte, error) {
	return EncodeEntities(ents, OutputSepAuto)
}

// EncodeEntities serializes an entity set. OutputSepAuto applies the style
// observed at decode time; a file that had no outputs falls back to
// commas.
func EncodeEntities(ents *Entities, style OutputSep) ([]byte, error) {
	if ents.World == nil || ents.World.Class() != worldspawnClass {
		return nil, ErrNoWorldspawn
	}

	if style == OutputSepAuto {
		style = ents.Sep
	}
	sep := ","
	if style == OutputSepControl {
		sep = string(rune(outputSepByte))
	}

	var out bytes.Buffer
	all := make([]*Entity, 0, len(ents.List)+1)
	all = append(all, ents.World)
	all = append(all, ents.List...)

	for _, ent := range all {
		out.WriteString("{\n")
		for _, kv := range ent.Keys {
			fmt.Fprintf(&out, "\"%s\" \"%s\"\n", kv.Key, strings.ReplaceAll(kv.Value, `"`, `\"`))
		}
		for _, o := range ent.Outputs {
			fmt.Fprintf(&out, "\"%s\" \"%s\"\n", o.Name, formatOutput(o, sep))
		}
		out.WriteString("}\n")
	}
	out.WriteByte(0)

	return out.Bytes(), nil
}

// formatOutput joins the five output fields with the chosen separator.
func formatOutput(o Output, sep string) string {
	delay := strconv.FormatFloat(o.Delay, 'g', -1, 64)

	return strings.Join([]string{
		o.Target,
		o.Input,
		o.Param,
		delay,
		strconv.FormatInt(int64(o.Times), 10),
	}, sep)
}
