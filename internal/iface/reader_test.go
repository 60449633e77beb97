package iface

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modtest/internal/domain"
)

func writeArtifact(t *testing.T, r *Reader, iface *Interface) {
	t.Helper()
	data, err := Encode(iface)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(r.Path(domain.ModuleName(iface.Module)), data, 0644))
}

func testSuite(module string, symbols ...string) *Interface {
	iface := &Interface{Module: module}
	for _, s := range symbols {
		iface.Symbols = append(iface.Symbols, Symbol{Name: s, Type: Named(TestTypeModule, TestTypeName)})
	}
	return iface
}

func TestReader_ReadTests(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(dir, zerolog.Nop())

	assert.Equal(t, filepath.Join(dir, "Foo-BarTest.mti"), r.Path("Foo.BarTest"))

	t.Run("test values", func(t *testing.T) {
		writeArtifact(t, r, testSuite("Foo.BarTest", "suite", "other"))

		tests, err := r.ReadTests("Foo.BarTest")
		require.NoError(t, err)
		assert.Equal(t, []domain.TestIdentity{
			{Module: "Foo.BarTest", Symbol: "suite", Kind: domain.KindValue},
			{Module: "Foo.BarTest", Symbol: "other", Kind: domain.KindValue},
		}, tests)
	})

	t.Run("no test exports is not an error", func(t *testing.T) {
		writeArtifact(t, r, &Interface{Module: "Helpers", Symbols: []Symbol{{Name: "add", Type: Lambda(Var("a"), Var("a"))}}})

		tests, err := r.ReadTests("Helpers")
		require.NoError(t, err)
		assert.Empty(t, tests)
	})

	t.Run("missing artifact", func(t *testing.T) {
		_, err := r.ReadTests("Nope")
		assert.True(t, domain.IsKind(err, domain.MissingInterface))
	})

	t.Run("corrupt artifact", func(t *testing.T) {
		require.NoError(t, os.WriteFile(r.Path("Corrupt"), []byte("garbage!!!!!"), 0644))

		_, err := r.ReadTests("Corrupt")
		assert.True(t, domain.IsKind(err, domain.MalformedInterface))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("artifact for another module", func(t *testing.T) {
		data, err := Encode(testSuite("Else", "suite"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(r.Path("Mismatch"), data, 0644))

		_, err = r.ReadTests("Mismatch")
		assert.True(t, domain.IsKind(err, domain.MalformedInterface))
	})
}

func TestReader_ReadAll(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(dir, zerolog.Nop())
	writeArtifact(t, r, testSuite("B", "z", "a"))
	writeArtifact(t, r, testSuite("A", "suite"))
	writeArtifact(t, r, &Interface{Module: "C"})

	expected := []domain.TestIdentity{
		{Module: "A", Symbol: "suite", Kind: domain.KindValue},
		{Module: "B", Symbol: "a", Kind: domain.KindValue},
		{Module: "B", Symbol: "z", Kind: domain.KindValue},
	}

	orders := [][]domain.ModuleName{
		{"A", "B", "C"},
		{"C", "B", "A"},
		{"B", "A", "C", "B"},
	}
	for _, order := range orders {
		tests, err := r.ReadAll(context.Background(), order)
		require.NoError(t, err)
		assert.Equal(t, expected, tests, "order %v", order)
	}

	t.Run("first failing module in order wins", func(t *testing.T) {
		require.NoError(t, os.WriteFile(r.Path("Bad"), []byte("xx"), 0644))

		_, err := r.ReadAll(context.Background(), []domain.ModuleName{"A", "Missing", "Bad"})
		assert.True(t, domain.IsKind(err, domain.MissingInterface))

		_, err = r.ReadAll(context.Background(), []domain.ModuleName{"Bad", "Missing"})
		assert.True(t, domain.IsKind(err, domain.MalformedInterface))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := r.ReadAll(ctx, []domain.ModuleName{"A"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
