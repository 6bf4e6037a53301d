package instrument

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies an instrument in the capability table
type Kind string

const (
	Guitar   Kind = "guitar"
	Bass     Kind = "bass"
	Keyboard Kind = "keyboard"
)

// Family groups instruments that share a search strategy
type Family string

const (
	Fretted Family = "fretted"
	Keyed   Family = "keyed"
)

// ErrUnknownInstrument is returned for instrument names outside the closed set
var ErrUnknownInstrument = errors.New("unknown instrument")

var kindAliases = map[string]Kind{
	"guitar":   Guitar,
	"bass":     Bass,
	"keyboard": Keyboard,
	"piano":    Keyboard,
	"keys":     Keyboard,
}

// ParseKind parses an instrument name, case-insensitively
func ParseKind(name string) (Kind, error) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q (expected guitar, bass or keyboard)", ErrUnknownInstrument, name)
	}
	return kind, nil
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
