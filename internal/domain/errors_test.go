package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("resolve: %w", &Error{Kind: AmbiguousModule, Path: "tests/Foo.mt", Candidates: []string{"Foo", "Tests.Foo"}})

	assert.True(t, errors.Is(err, &Error{Kind: AmbiguousModule}))
	assert.False(t, errors.Is(err, &Error{Kind: UnresolvableModule}))
	assert.True(t, IsKind(err, AmbiguousModule))
	assert.Equal(t, AmbiguousModule, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestError_Message(t *testing.T) {
	cause := errors.New("exit status 2")
	err := NewError(CompilationFailed, "", cause)

	assert.Equal(t, "compilation failed: exit status 2", err.Error())
	assert.ErrorIs(t, err, cause)

	amb := &Error{Kind: AmbiguousModule, Path: "tests/Foo.mt", Candidates: []string{"Foo", "Tests.Foo"}}
	assert.Equal(t, "ambiguous module: tests/Foo.mt (candidates: Foo, Tests.Foo)", amb.Error())
}

func TestTestIdentity(t *testing.T) {
	a := TestIdentity{Module: "Foo.BarTest", Symbol: "suite"}
	b := TestIdentity{Module: "Foo.BarTest", Symbol: "tests"}
	c := TestIdentity{Module: "Foo.Baz", Symbol: "a"}

	assert.Equal(t, "Foo.BarTest.suite", a.String())
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
	assert.Equal(t, "Foo-BarTest", a.Module.ArtifactBase())
}
