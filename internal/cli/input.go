package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/arq/internal/config"
	"github.com/roach88/arq/internal/store"
	"github.com/roach88/arq/internal/table"
)

// tagged marks an error with a failure class for classify while keeping the
// original message.
type tagged struct {
	class error
	err   error
}

func (e *tagged) Error() string   { return e.err.Error() }
func (e *tagged) Unwrap() []error { return []error{e.class, e.err} }

// readText reads a query or data file.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &tagged{class: errRead, err: err}
	}
	return string(data), nil
}

// openStore opens the database at path, or an in-memory store when path is
// empty.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		path = store.MemoryPath
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, &tagged{class: errStore, err: err}
	}
	return st, nil
}

// widthFor resolves the --width flag, falling back to the settings file.
func widthFor(flag string, cfg *config.Config) (table.WidthFunc, error) {
	if flag == "" {
		return cfg.WidthFunc(), nil
	}
	f, ok := table.WidthByName(flag)
	if !ok {
		return nil, fmt.Errorf("unknown width %q: must be chars or display", flag)
	}
	return f, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
