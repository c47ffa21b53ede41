package ledger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	pkgtest "polycry.pt/poly-go/test"

	"github.com/pylon-protocol/deployer/ledger"
)

func TestMarshalOrdered(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Set("b", "11"))
	require.NoError(t, l.Set("a", "10"))

	data, err := l.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, "{\n  \"b\": \"11\",\n  \"a\": \"10\"\n}", string(data))

	// Embedded in other documents the ledger is a plain object.
	compact, err := json.Marshal(l)
	require.NoError(t, err)
	require.Equal(t, `{"b":"11","a":"10"}`, string(compact))

	empty, err := ledger.New().MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, "{}", string(empty))
}

func TestSetIsStable(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Set("a", "10"))
	require.NoError(t, l.Set("a", "10"))
	require.ErrorIs(t, l.Set("a", "12"), ledger.ErrConflict)
	require.Equal(t, 1, l.Len())

	id, ok := l.Get("a")
	require.True(t, ok)
	require.Equal(t, "10", id)
	require.False(t, l.Has("b"))
}

func TestUnmarshalKeepsOrder(t *testing.T) {
	rng := pkgtest.Prng(t)
	l := ledger.New()
	n := 2 + rng.Intn(20)
	for i := 0; i < n; i++ {
		require.NoError(t, l.Set("contract_"+strconv.Itoa(rng.Int()), strconv.Itoa(i)))
	}
	data, err := l.MarshalJSON()
	require.NoError(t, err)

	var decoded ledger.Ledger
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, l.Names(), decoded.Names())

	require.Error(t, json.Unmarshal([]byte(`["a"]`), &decoded))
	require.Error(t, json.Unmarshal([]byte(`{"a": 10}`), &decoded))
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := ledger.Path(filepath.Join(dir, "out"), "tequila")
	require.Equal(t, "code_id_tequila.json", filepath.Base(path))

	l, err := ledger.Load(path)
	require.NoError(t, err)
	require.Zero(t, l.Len())

	require.NoError(t, l.Set("pylon_pool", "10"))
	require.NoError(t, l.Save(path))
	require.NoError(t, l.Set("pylon_gateway", "11"))
	require.NoError(t, l.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"pylon_pool\": \"10\",\n  \"pylon_gateway\": \"11\"\n}", string(raw))

	loaded, err := ledger.Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"pylon_pool", "pylon_gateway"}, loaded.Names())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files are left behind")
}
