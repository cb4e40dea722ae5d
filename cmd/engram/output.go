package main

import (
	"encoding/json"
	"fmt"
)

// printJSON writes v to stdout as indented JSON. Pretty-printing beyond
// this is explicitly out of scope (spec.md §1) — commands fall back to a
// plain line-oriented rendering otherwise.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
