package embedded

import (
	_ "embed"
)

// InstrumentsYAML is the instrument capability table
//
//go:embed data/instruments.yaml
var InstrumentsYAML []byte
