// Package ledger records which code id every deployed artifact received.
package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
)

var ErrConflict = errors.New("artifact already recorded with a different code id")

// Ledger is an insertion ordered mapping of artifact name to code id. It has
// a single owner and is not safe for concurrent use.
type Ledger struct {
	names   []string
	codeIDs map[string]string
}

func New() *Ledger {
	return &Ledger{codeIDs: make(map[string]string)}
}

// FileName is the ledger file name for a network.
func FileName(network string) string {
	return fmt.Sprintf("code_id_%s.json", network)
}

// Path is the ledger location for a network under dir.
func Path(dir, network string) string {
	return filepath.Join(dir, FileName(network))
}

// Set records the code id of an artifact. Recording the same pair twice is a
// no-op; a different code id for a recorded name is an ErrConflict.
func (l *Ledger) Set(name, codeID string) error {
	old, ok := l.codeIDs[name]
	if ok {
		if old == codeID {
			return nil
		}
		return errors.Wrapf(ErrConflict, "%s: %s, now %s", name, old, codeID)
	}
	l.names = append(l.names, name)
	l.codeIDs[name] = codeID
	return nil
}

func (l *Ledger) Get(name string) (string, bool) {
	id, ok := l.codeIDs[name]
	return id, ok
}

func (l *Ledger) Has(name string) bool {
	_, ok := l.codeIDs[name]
	return ok
}

func (l *Ledger) Len() int {
	return len(l.names)
}

// Names returns the recorded names in insertion order.
func (l *Ledger) Names() []string {
	return append([]string(nil), l.names...)
}

// MarshalJSON writes the ledger as an object with two space indentation and
// keys in insertion order.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	if len(l.names) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, name := range l.names {
		key, err := marshalString(name)
		if err != nil {
			return nil, err
		}
		value, err := marshalString(l.codeIDs[name])
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(l.names)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of string values, keeping the key order of
// the document.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	*l = *New()
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("ledger: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)
		var codeID string
		if err := dec.Decode(&codeID); err != nil {
			return errors.Wrapf(err, "ledger: value of %q", name)
		}
		if err := l.Set(name, codeID); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
