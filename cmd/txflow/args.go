package main

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/nikmy/txflow/pkg/errors"
)

const (
	storeSQLite   = "sqlite"
	storePostgres = "postgres"
)

// parseArgs turns command line values into statement arguments.
// Integers and floats keep their numeric type, "null" becomes nil.
func parseArgs(raw []string) []any {
	args := make([]any, 0, len(raw))
	for _, s := range raw {
		args = append(args, parseArg(s))
	}
	return args
}

func parseArg(s string) any {
	if s == "null" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// printRows writes one JSON document per line.
func printRows[T any](w io.Writer, rows []T) error {
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return errors.WrapFail(err, "encode row")
		}
	}
	return nil
}

func unknownStore(store string) error {
	return errors.Errorf("unknown store %q: expected %s or %s", store, storeSQLite, storePostgres)
}
