package command

import (
	"fmt"

	"github.com/nilforge/smtfront/backend"
)

// Options is the session-scoped set-option configuration. Defaults match
// the conventional SMT-LIB v2 solver defaults.
type Options struct {
	PrintSuccess            bool
	GlobalDeclarations      bool
	ProduceModels           bool
	ProduceUnsatAssumptions bool
	Incremental             bool
	RegularOutputChannel    string

	// DeclSortBVWidth backs declare-sort's configured default width; 0 means
	// declare-sort is rejected outright.
	DeclSortBVWidth int

	// ForwardUnknownToBackend controls whether a set-option name this
	// package doesn't recognize is forwarded to the Backend's own option
	// registry by its bare (colon-stripped) name.
	ForwardUnknownToBackend bool
}

// NewOptions returns the default option set.
func NewOptions() *Options {
	return &Options{
		PrintSuccess:            true,
		RegularOutputChannel:    "stdout",
		ForwardUnknownToBackend: true,
	}
}

// Set applies one set-option assignment. name includes its leading ':'.
func (o *Options) Set(be backend.Backend, name, value string) error {
	switch name {
	case ":print-success":
		b, err := parseOptBool(name, value)
		if err != nil {
			return err
		}
		o.PrintSuccess = b
	case ":global-declarations":
		b, err := parseOptBool(name, value)
		if err != nil {
			return err
		}
		o.GlobalDeclarations = b
	case ":produce-models":
		b, err := parseOptBool(name, value)
		if err != nil {
			return err
		}
		o.ProduceModels = b
	case ":produce-unsat-assumptions":
		// The value is validated as a bool but this option only ever turns
		// the feature on; there is no supported way to disable it again
		// mid-session once a script has requested it.
		if _, err := parseOptBool(name, value); err != nil {
			return err
		}
		o.ProduceUnsatAssumptions = true
	case ":incremental":
		b, err := parseOptBool(name, value)
		if err != nil {
			return err
		}
		o.Incremental = b
	case ":regular-output-channel":
		o.RegularOutputChannel = value
	case ":declsort-bv-width":
		var w int
		if _, err := fmt.Sscanf(value, "%d", &w); err != nil {
			return fmt.Errorf("set-option %s: expected an integer, got %q", name, value)
		}
		o.DeclSortBVWidth = w
	default:
		if !o.ForwardUnknownToBackend {
			return nil
		}
		bare := name
		if len(bare) > 0 && bare[0] == ':' {
			bare = bare[1:]
		}
		return be.SetOption(bare, value)
	}
	return nil
}

func parseOptBool(name, value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("set-option %s: expected true or false, got %q", name, value)
	}
}
