package main

import (
	"flag"
	"fmt"
	"strings"
)

type versionCmd struct{ r *root }

func (v *versionCmd) Program() string { return v.r.Program() }

func (v *versionCmd) FlagSet() *flag.FlagSet { return nil }

func (v *versionCmd) Run() error {
	name := strings.TrimSuffix(v.r.program, " version")
	out := fmt.Sprintf("%s %s", name, version)
	if commit != "" {
		out += " (" + commit
		if date != "" {
			out += ", " + date
		}
		out += ")"
	}
	fmt.Fprintln(v.r.out(), out)
	return nil
}
