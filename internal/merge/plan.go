package merge

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/tmdl"
)

// Action is what a merge does with one source table.
type Action int

const (
	// ActionCreate copies a table the target lacks.
	ActionCreate Action = iota
	// ActionUpdate rewrites a table both sides declare.
	ActionUpdate
)

func (a Action) String() string {
	if a == ActionUpdate {
		return "update"
	}
	return "create"
}

// Step is the planned action for one table.
type Step struct {
	Name   string
	Action Action
	Source *tmdl.Table
	Target *tmdl.Table // nil for ActionCreate

	// File is the base name written in the target table directory. For a
	// created table it never matches a file the target already has.
	File string
}

// Renamed reports whether a created table is written under another file
// name than the one it has in the source.
func (s Step) Renamed() bool {
	return s.Action == ActionCreate && s.File != "" && s.File != fileName(s.Source)
}

// Plan lists the steps of a merge in table name order.
type Plan struct {
	Steps []Step
	// Skipped holds the excluded source table names.
	Skipped []string
}

// BuildPlan decides, for every source table, whether it is created in or
// updated on the target. Excluded tables are recorded in Skipped and get no
// step. Tables only the target declares are left alone.
//
// Tables are matched by their declared name, not by file name, so a new
// table may share its file name with an unrelated target table. Such a
// table is given a free name with a numeric suffix instead.
func BuildPlan(source, target map[string]*tmdl.Table) *Plan {
	taken := make(map[string]bool, len(target))
	for _, t := range target {
		taken[strings.ToLower(fileName(t))] = true
	}

	names := make([]string, 0, len(source))
	for name := range source {
		names = append(names, name)
	}
	sort.Strings(names)

	plan := &Plan{}
	for _, name := range names {
		if IsExcluded(name) {
			plan.Skipped = append(plan.Skipped, name)
			continue
		}
		step := Step{Name: name, Action: ActionCreate, Source: source[name]}
		if t, ok := target[name]; ok {
			step.Action = ActionUpdate
			step.Target = t
			step.File = fileName(t)
		} else {
			step.File = freeFileName(fileName(step.Source), taken)
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan
}

// Count returns the number of steps with the given action.
func (p *Plan) Count(action Action) int {
	n := 0
	for _, s := range p.Steps {
		if s.Action == action {
			n++
		}
	}
	return n
}

// freeFileName returns base, or base with the first free numeric suffix, and
// marks the result as taken. Names are compared case-insensitively.
func freeFileName(base string, taken map[string]bool) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := base
	for i := 2; taken[strings.ToLower(name)]; i++ {
		name = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
	taken[strings.ToLower(name)] = true
	return name
}
