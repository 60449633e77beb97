// Package iface reads the binary interface artifacts the compiler writes for
// every module and finds the exported symbols that are test suites.
package iface

import (
	"strings"
)

// Magic and Version identify schema version 1 of the artifact format
const (
	Magic   = "MTIF"
	Version = 1
)

// Extension of interface artifact files
const Extension = ".mti"

// TypeTag is the leading byte of every encoded type
type TypeTag uint8

const (
	TagNamed  TypeTag = 0x01
	TagLambda TypeTag = 0x02
	TagVar    TypeTag = 0x03
	TagUnit   TypeTag = 0x04
	TagTuple  TypeTag = 0x05
	TagRecord TypeTag = 0x06
)

// Type is a type signature as recorded by the compiler
type Type struct {
	Tag    TypeTag
	Module string  // Named: home module
	Name   string  // Named: type name; Var: variable name
	Args   []*Type // Named: type arguments; Tuple: elements; Lambda: [from, to]
	Fields []Field // Record
}

// Field is one record field
type Field struct {
	Name string
	Type *Type
}

// Named builds a named type such as Test.Test
func Named(module, name string, args ...*Type) *Type {
	return &Type{Tag: TagNamed, Module: module, Name: name, Args: args}
}

// Lambda builds the function type from -> to
func Lambda(from, to *Type) *Type {
	return &Type{Tag: TagLambda, Args: []*Type{from, to}}
}

// Var builds a type variable
func Var(name string) *Type {
	return &Type{Tag: TagVar, Name: name}
}

// Unit is the unit type ()
func Unit() *Type {
	return &Type{Tag: TagUnit}
}

// Tuple builds a tuple type
func Tuple(elems ...*Type) *Type {
	return &Type{Tag: TagTuple, Args: elems}
}

// Record builds a record type
func Record(fields ...Field) *Type {
	return &Type{Tag: TagRecord, Fields: fields}
}

// String renders the type in source notation
func (t *Type) String() string {
	var b strings.Builder
	t.write(&b, false)
	return b.String()
}

func (t *Type) write(b *strings.Builder, nested bool) {
	switch t.Tag {
	case TagNamed:
		if nested && len(t.Args) > 0 {
			b.WriteByte('(')
			defer b.WriteByte(')')
		}
		if t.Module != "" {
			b.WriteString(t.Module)
			b.WriteByte('.')
		}
		b.WriteString(t.Name)
		for _, arg := range t.Args {
			b.WriteByte(' ')
			arg.write(b, true)
		}
	case TagLambda:
		if nested {
			b.WriteByte('(')
			defer b.WriteByte(')')
		}
		t.Args[0].write(b, true)
		b.WriteString(" -> ")
		t.Args[1].write(b, false)
	case TagVar:
		b.WriteString(t.Name)
	case TagUnit:
		b.WriteString("()")
	case TagTuple:
		b.WriteString("( ")
		for i, elem := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			elem.write(b, false)
		}
		b.WriteString(" )")
	case TagRecord:
		b.WriteString("{ ")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(" : ")
			f.Type.write(b, false)
		}
		b.WriteString(" }")
	}
}

// Symbol is an exported name with its type signature
type Symbol struct {
	Name string
	Type *Type
}

// Interface is a decoded artifact
type Interface struct {
	Module  string
	Symbols []Symbol
}
