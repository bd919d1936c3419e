package artifact

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidgauge/hnti/internal/ir"
)

func TestCompileAndRoundTrip(t *testing.T) {
	x := ir.In(ir.StaticInput("x"))
	pool := []*ir.Expr{ir.BinMul(x, x)}
	qualities := []Quality{
		{Name: "Scratch", Priority: 1, Footprint: nil, Negated: true},
	}
	exprs := []*ir.Expr{
		ir.BinGt(ir.SubroutineRef(0), ir.In(ir.DynamicInput("hole", "Diameter"))),
	}

	id := uuid.New()
	rec, err := Compile(id, qualities, exprs, pool)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rec))

	got, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, rec.Symbols.StaticNames, got.Symbols.StaticNames)
	assert.Equal(t, rec.Symbols.EventNames, got.Symbols.EventNames)
	require.Len(t, got.Pool, 1)
	require.Len(t, got.Paths, 1)
	assert.Equal(t, "Scratch", got.Paths[0].Quality.Name)
	assert.Equal(t, 1, got.Paths[0].Quality.Priority)
	assert.True(t, got.Paths[0].Quality.Negated)
	assert.Equal(t, rec.Pool[0].Instructions, got.Pool[0].Instructions)
	assert.Equal(t, rec.Paths[0].Program.Instructions, got.Paths[0].Program.Instructions)

	eventID, ok := got.Symbols.EventID("hole")
	require.True(t, ok)
	assert.Equal(t, []string{"Diameter"}, got.Symbols.CaseNames(eventID))
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("XXXX\x01\x00")
	_, err := Read(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad magic")
}

func TestReadRejectsUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	buf.Write([]byte{0xFF, 0xFF}) // version 65535
	_, err := Read(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestReadRejectsTruncatedStream(t *testing.T) {
	x := ir.In(ir.StaticInput("x"))
	qualities := []Quality{{Name: "Q", Priority: 1}}
	exprs := []*ir.Expr{ir.BinGt(x, ir.LitNumber(0))}

	rec, err := Compile(uuid.New(), qualities, exprs, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rec))

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-10])
	_, err = Read(truncated)
	require.Error(t, err)
}
