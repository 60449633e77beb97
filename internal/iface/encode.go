package iface

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
)

// Encode serializes an interface in schema version 1.
// The compiler is the only producer of real artifacts; this exists for fixtures and tooling.
func Encode(iface *Interface) ([]byte, error) {
	if iface == nil || iface.Module == "" {
		return nil, errors.New("encode: module name is required")
	}
	if uint64(len(iface.Symbols)) > math.MaxUint32 {
		return nil, errors.New("encode: too many symbols")
	}

	e := &encoder{buf: make([]byte, 0, 64)}
	e.buf = append(e.buf, Magic...)
	e.buf = binary.BigEndian.AppendUint16(e.buf, Version)
	e.str(iface.Module)
	e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(len(iface.Symbols)))
	for _, sym := range iface.Symbols {
		if sym.Name == "" {
			return nil, errors.New("encode: symbol name is required")
		}
		e.str(sym.Name)
		e.typ(sym.Type)
	}
	if e.err != nil {
		return nil, fmt.Errorf("encode %s: %w", iface.Module, e.err)
	}

	return binary.BigEndian.AppendUint32(e.buf, crc32.ChecksumIEEE(e.buf)), nil
}

type encoder struct {
	buf []byte
	err error
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) str(s string) {
	if len(s) > math.MaxUint16 {
		e.fail(fmt.Errorf("string of %d bytes is too long", len(s)))
		return
	}
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) typ(t *Type) {
	if t == nil {
		e.fail(errors.New("nil type"))
		return
	}
	e.buf = append(e.buf, byte(t.Tag))

	switch t.Tag {
	case TagNamed:
		e.str(t.Module)
		e.str(t.Name)
		e.count8(len(t.Args))
		for _, arg := range t.Args {
			e.typ(arg)
		}
	case TagLambda:
		if len(t.Args) != 2 {
			e.fail(fmt.Errorf("lambda with %d types", len(t.Args)))
			return
		}
		e.typ(t.Args[0])
		e.typ(t.Args[1])
	case TagVar:
		e.str(t.Name)
	case TagUnit:
	case TagTuple:
		e.count8(len(t.Args))
		for _, elem := range t.Args {
			e.typ(elem)
		}
	case TagRecord:
		if len(t.Fields) > math.MaxUint16 {
			e.fail(fmt.Errorf("record with %d fields", len(t.Fields)))
			return
		}
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(len(t.Fields)))
		for _, f := range t.Fields {
			e.str(f.Name)
			e.typ(f.Type)
		}
	default:
		e.fail(fmt.Errorf("unknown type tag 0x%02x", byte(t.Tag)))
	}
}

func (e *encoder) count8(n int) {
	if n > math.MaxUint8 {
		e.fail(fmt.Errorf("%d type arguments", n))
		return
	}
	e.buf = append(e.buf, byte(n))
}
