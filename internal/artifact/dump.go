package artifact

import (
	"fmt"
	"strings"
)

// Dump renders a CompiledRecipe's structure as canonical text: the
// static/dynamic symbol tables, the pool's subroutine count, and each
// path's quality metadata. It exists for golden-file regression
// coverage of Compile/Write, not for reconstructing a recipe.
func Dump(rec *CompiledRecipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %s\n", rec.ID)
	fmt.Fprintf(&b, "static: %v\n", rec.Symbols.StaticNames)
	fmt.Fprintf(&b, "events: %v\n", rec.Symbols.EventNames)
	for i, name := range rec.Symbols.EventNames {
		fmt.Fprintf(&b, "  %s.cases: %v\n", name, rec.Symbols.CaseNames(uint32(i)))
	}
	fmt.Fprintf(&b, "pool: %d subroutine(s)\n", len(rec.Pool))
	for i, p := range rec.Pool {
		fmt.Fprintf(&b, "  [%d] %d instruction(s)\n", i, len(p.Instructions))
	}
	fmt.Fprintf(&b, "paths: %d\n", len(rec.Paths))
	for _, p := range rec.Paths {
		fmt.Fprintf(&b, "  %s priority=%d negated=%v footprint=%v instructions=%d\n",
			p.Quality.Name, p.Quality.Priority, p.Quality.Negated, p.Quality.Footprint, len(p.Program.Instructions))
	}
	return b.String()
}
