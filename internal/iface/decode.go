package iface

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"unicode/utf8"
)

// maxDepth bounds type nesting so hostile input cannot exhaust the stack
const maxDepth = 64

// Structural violations reported by Decode
var (
	ErrTruncated     = errors.New("truncated artifact")
	ErrBadMagic      = errors.New("bad magic tag")
	ErrVersion       = errors.New("unsupported schema version")
	ErrChecksum      = errors.New("checksum mismatch")
	ErrSymbolCount   = errors.New("invalid symbol count")
	ErrUnknownTag    = errors.New("unknown type tag")
	ErrTooDeep       = errors.New("type nesting too deep")
	ErrInvalidString = errors.New("invalid string")
	ErrTrailingBytes = errors.New("trailing bytes after symbol table")
)

// headerSize is magic + version; checksumSize trails the payload
const (
	headerSize   = len(Magic) + 2
	checksumSize = 4
)

// Decode parses an interface artifact. It never panics; any structural
// violation is reported as an error wrapping one of the Err* values.
func Decode(data []byte) (*Interface, error) {
	if len(data) < headerSize+checksumSize {
		return nil, fmt.Errorf("%d bytes: %w", len(data), ErrTruncated)
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("%q: %w", data[:len(Magic)], ErrBadMagic)
	}
	if v := binary.BigEndian.Uint16(data[len(Magic):headerSize]); v != Version {
		return nil, fmt.Errorf("version %d, want %d: %w", v, Version, ErrVersion)
	}

	payload := data[:len(data)-checksumSize]
	want := binary.BigEndian.Uint32(data[len(data)-checksumSize:])
	if got := crc32.ChecksumIEEE(payload); got != want {
		return nil, fmt.Errorf("got %08x, want %08x: %w", got, want, ErrChecksum)
	}

	d := &decoder{data: payload, off: headerSize}
	iface, err := d.decodeInterface()
	if err != nil {
		return nil, fmt.Errorf("offset %d: %w", d.off, err)
	}
	return iface, nil
}

type decoder struct {
	data []byte
	off  int
}

func (d *decoder) decodeInterface() (*Interface, error) {
	module, err := d.str()
	if err != nil {
		return nil, err
	}
	if module == "" {
		return nil, fmt.Errorf("empty module name: %w", ErrInvalidString)
	}

	count, err := d.u32()
	if err != nil {
		return nil, err
	}
	// Every record takes at least a 2-byte name length, a 1-byte name and a 1-byte tag.
	if uint64(count)*4 > uint64(d.remaining()) {
		return nil, fmt.Errorf("%d records in %d bytes: %w", count, d.remaining(), ErrSymbolCount)
	}

	iface := &Interface{Module: module}
	if count > 0 {
		iface.Symbols = make([]Symbol, 0, count)
	}
	for i := uint32(0); i < count; i++ {
		name, err := d.str()
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, fmt.Errorf("symbol %d has an empty name: %w", i, ErrInvalidString)
		}
		typ, err := d.typ(0)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", name, err)
		}
		iface.Symbols = append(iface.Symbols, Symbol{Name: name, Type: typ})
	}

	if d.remaining() != 0 {
		return nil, fmt.Errorf("%d bytes: %w", d.remaining(), ErrTrailingBytes)
	}
	return iface, nil
}

func (d *decoder) typ(depth int) (*Type, error) {
	if depth >= maxDepth {
		return nil, ErrTooDeep
	}
	tag, err := d.u8()
	if err != nil {
		return nil, err
	}

	switch TypeTag(tag) {
	case TagNamed:
		module, err := d.str()
		if err != nil {
			return nil, err
		}
		name, err := d.str()
		if err != nil {
			return nil, err
		}
		argc, err := d.u8()
		if err != nil {
			return nil, err
		}
		args, err := d.types(int(argc), depth)
		if err != nil {
			return nil, err
		}
		return &Type{Tag: TagNamed, Module: module, Name: name, Args: args}, nil

	case TagLambda:
		args, err := d.types(2, depth)
		if err != nil {
			return nil, err
		}
		return &Type{Tag: TagLambda, Args: args}, nil

	case TagVar:
		name, err := d.str()
		if err != nil {
			return nil, err
		}
		return &Type{Tag: TagVar, Name: name}, nil

	case TagUnit:
		return &Type{Tag: TagUnit}, nil

	case TagTuple:
		n, err := d.u8()
		if err != nil {
			return nil, err
		}
		elems, err := d.types(int(n), depth)
		if err != nil {
			return nil, err
		}
		return &Type{Tag: TagTuple, Args: elems}, nil

	case TagRecord:
		n, err := d.u16()
		if err != nil {
			return nil, err
		}
		if int(n)*3 > d.remaining() {
			return nil, ErrTruncated
		}
		var fields []Field
		for i := 0; i < int(n); i++ {
			name, err := d.str()
			if err != nil {
				return nil, err
			}
			ft, err := d.typ(depth + 1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: name, Type: ft})
		}
		return &Type{Tag: TagRecord, Fields: fields}, nil
	}

	return nil, fmt.Errorf("0x%02x: %w", tag, ErrUnknownTag)
}

func (d *decoder) types(n, depth int) ([]*Type, error) {
	if n == 0 {
		return nil, nil
	}
	if n > d.remaining() {
		return nil, ErrTruncated
	}
	out := make([]*Type, 0, n)
	for i := 0; i < n; i++ {
		t, err := d.typ(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (d *decoder) remaining() int {
	return len(d.data) - d.off
}

func (d *decoder) take(n int) ([]byte, error) {
	if n > d.remaining() {
		return nil, ErrTruncated
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) u8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) str() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidString
	}
	return string(b), nil
}
