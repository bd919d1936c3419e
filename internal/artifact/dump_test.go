package artifact

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/lucidgauge/hnti/internal/ir"
)

func TestDumpCompiledRecipe(t *testing.T) {
	x := ir.In(ir.StaticInput("x"))
	pool := []*ir.Expr{ir.BinMul(x, x)}
	qualities := []Quality{
		{Name: "Scratch", Priority: 1, Negated: true},
	}
	exprs := []*ir.Expr{
		ir.BinGt(ir.SubroutineRef(0), ir.In(ir.DynamicInput("hole", "Diameter"))),
	}

	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	rec, err := Compile(id, qualities, exprs, pool)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "compiled_recipe_dump", []byte(Dump(rec)))
}
