package splat

import (
	"fmt"

	"github.com/dev-reflct/splatq/table"
)

const (
	// DefaultK is the codebook size of the geometric and color groups.
	DefaultK = 256

	// DefaultSHK is the codebook size of the spherical-harmonic group.
	DefaultSHK = 1024

	// DefaultIterations bounds the assignment passes per group.
	DefaultIterations = 10
)

// Group is one independently clustered set of columns.
type Group struct {
	Name       string   `yaml:"name"`
	Columns    []string `yaml:"columns"`
	K          int      `yaml:"k"`
	Iterations int      `yaml:"iterations"`

	// Strategy overrides the pipeline strategy for this group when set.
	Strategy string `yaml:"strategy,omitempty"`
}

// DefaultGroups returns positions, rotations, scales and colors, plus sh
// when t carries f_rest columns.
func DefaultGroups(t *table.Table) []Group {
	groups := []Group{
		{Name: "positions", Columns: []string{"x", "y", "z"}},
		{Name: "rotations", Columns: []string{"rot_0", "rot_1", "rot_2", "rot_3"}},
		{Name: "scales", Columns: []string{"scale_0", "scale_1", "scale_2"}},
		{Name: "colors", Columns: []string{"f_dc_0", "f_dc_1", "f_dc_2", "opacity"}},
	}
	for i := range groups {
		groups[i].K = DefaultK
		groups[i].Iterations = DefaultIterations
	}
	if sh := SHColumns(t); len(sh) > 0 {
		groups = append(groups, Group{
			Name:       "sh",
			Columns:    sh,
			K:          DefaultSHK,
			Iterations: DefaultIterations,
		})
	}
	return groups
}

func (g Group) validate(t *table.Table) error {
	if g.Name == "" {
		return fmt.Errorf("%w: group without name", ErrConfig)
	}
	if len(g.Columns) == 0 {
		return fmt.Errorf("%w: group %q has no columns", ErrConfig, g.Name)
	}
	if g.K <= 0 || g.Iterations <= 0 {
		return fmt.Errorf("%w: group %q needs positive k and iterations", ErrConfig, g.Name)
	}
	if t == nil {
		return nil
	}
	for _, c := range g.Columns {
		if !t.HasColumn(c) {
			return fmt.Errorf("%w: group %q column %q", table.ErrSchema, g.Name, c)
		}
	}
	return nil
}
