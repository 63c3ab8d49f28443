package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fila is a single row of a report result. Report queries return
// heterogeneous objects whose column set is only known at runtime, and the
// panel renders columns in the order the API emitted them, so decoding has
// to preserve JSON key order (a plain map would lose it).
type Fila struct {
	claves  []string
	valores map[string]any
}

// NuevaFila builds a row from alternating key/value pairs, keeping the
// given order. Used by tests and by the analyzer when synthesizing rows.
func NuevaFila(pares ...any) Fila {
	f := Fila{valores: make(map[string]any)}
	for i := 0; i+1 < len(pares); i += 2 {
		k, ok := pares[i].(string)
		if !ok {
			continue
		}
		f.Set(k, pares[i+1])
	}
	return f
}

// Claves returns the row's keys in first-seen order.
func (f Fila) Claves() []string {
	return f.claves
}

// Valor returns the value for key k and whether the key exists.
func (f Fila) Valor(k string) (any, bool) {
	v, ok := f.valores[k]
	return v, ok
}

// Tiene reports whether the row has key k.
func (f Fila) Tiene(k string) bool {
	_, ok := f.valores[k]
	return ok
}

// Set stores v under k, appending k to the key order if new.
func (f *Fila) Set(k string, v any) {
	if f.valores == nil {
		f.valores = make(map[string]any)
	}
	if _, ok := f.valores[k]; !ok {
		f.claves = append(f.claves, k)
	}
	f.valores[k] = v
}

// Len returns the number of columns in the row.
func (f Fila) Len() int {
	return len(f.claves)
}

func (f *Fila) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fila: expected object, got %v", tok)
	}

	f.claves = nil
	f.valores = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("fila: non-string key %v", keyTok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		f.Set(key, v)
	}

	// Consume closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (f Fila) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.claves {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(f.valores[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
