// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package der implements a minimal cursor over ASN.1 DER encoded data.
//
// The package extracts one tag/length/value triple at a time. It never copies
// the input: values are returned as views into the buffer the caller passed
// in. Only the definite length form is supported, and only single octet
// identifiers, which covers everything that appears in an X.509 Name.
//
// All functions are safe to call with arbitrary input. Malformed input is
// reported with one of the sentinel errors of this package and never causes a
// panic or a read outside the buffer.
package der

import (
	"fmt"

	"github.com/scionproto/dnpki/pkg/private/serrors"
)

var (
	// ErrTruncated indicates that the buffer ends before the element header
	// is complete.
	ErrTruncated = serrors.New("truncated DER element")
	// ErrMalformedLength indicates that the length octets are invalid, or
	// that the declared length exceeds the remaining buffer.
	ErrMalformedLength = serrors.New("malformed DER length")
	// ErrUnsupportedEncoding indicates a valid BER construct that is not
	// supported, i.e. the indefinite length form or a multi-octet identifier.
	ErrUnsupportedEncoding = serrors.New("unsupported encoding")
)

// maxLengthOctets is the maximum number of long form length octets accepted.
// Four octets already allow lengths far beyond any certificate.
const maxLengthOctets = 4

// Tag is an ASN.1 identifier octet, including the class and constructed bits.
type Tag uint8

// Universal tags that appear in X.509 Names.
const (
	TagOID             Tag = 0x06
	TagUTF8String      Tag = 0x0c
	TagPrintableString Tag = 0x13
	TagT61String       Tag = 0x14
	TagIA5String       Tag = 0x16
	TagUniversalString Tag = 0x1c
	TagBMPString       Tag = 0x1e
	TagSequence        Tag = 0x30
	TagSet             Tag = 0x31
)

const (
	classConstructed = 0x20
	tagNumberMask    = 0x1f
)

var tagNames = map[Tag]string{
	TagOID:             "OBJECT IDENTIFIER",
	TagUTF8String:      "UTF8String",
	TagPrintableString: "PrintableString",
	TagT61String:       "T61String",
	TagIA5String:       "IA5String",
	TagUniversalString: "UniversalString",
	TagBMPString:       "BMPString",
	TagSequence:        "SEQUENCE",
	TagSet:             "SET",
}

// Constructed reports whether the constructed bit is set.
func (t Tag) Constructed() bool {
	return t&classConstructed != 0
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return fmt.Sprintf("0x%02x", uint8(t))
}

// ReadTagAndLength reads the element header that starts at offset. It returns
// the tag, the offset of the first value octet and the number of value
// octets. On success, buf[valueOffset:valueOffset+valueLength] is guaranteed
// to be within bounds.
func ReadTagAndLength(buf []byte, offset int) (Tag, int, int, error) {
	if offset < 0 || offset >= len(buf) || len(buf)-offset < 2 {
		return 0, 0, 0, serrors.JoinNoStack(ErrTruncated, nil,
			"offset", offset, "size", len(buf))
	}
	tag := Tag(buf[offset])
	if tag&tagNumberMask == tagNumberMask {
		return 0, 0, 0, serrors.JoinNoStack(ErrUnsupportedEncoding, nil,
			"offset", offset, "reason", "multi-octet identifier")
	}
	pos := offset + 1
	first := buf[pos]
	pos++

	var length uint64
	switch {
	case first < 0x80:
		length = uint64(first)
	case first == 0x80:
		return 0, 0, 0, serrors.JoinNoStack(ErrUnsupportedEncoding, nil,
			"offset", offset, "reason", "indefinite length")
	case first == 0xff:
		return 0, 0, 0, serrors.JoinNoStack(ErrMalformedLength, nil,
			"offset", offset, "reason", "reserved length octet")
	default:
		n := int(first & 0x7f)
		if n > maxLengthOctets {
			return 0, 0, 0, serrors.JoinNoStack(ErrMalformedLength, nil,
				"offset", offset, "length_octets", n)
		}
		if len(buf)-pos < n {
			return 0, 0, 0, serrors.JoinNoStack(ErrTruncated, nil,
				"offset", offset, "length_octets", n, "size", len(buf))
		}
		if buf[pos] == 0 {
			return 0, 0, 0, serrors.JoinNoStack(ErrMalformedLength, nil,
				"offset", offset, "reason", "leading zero in long form")
		}
		for _, b := range buf[pos : pos+n] {
			length = length<<8 | uint64(b)
		}
		pos += n
		if length < 0x80 {
			return 0, 0, 0, serrors.JoinNoStack(ErrMalformedLength, nil,
				"offset", offset, "reason", "long form for short length")
		}
	}
	if length > uint64(len(buf)-pos) {
		return 0, 0, 0, serrors.JoinNoStack(ErrMalformedLength, nil,
			"offset", offset, "length", length, "remaining", len(buf)-pos)
	}
	return tag, pos, int(length), nil
}

// SliceValue returns a view of the value octets. The view shares memory with
// buf and its capacity is limited to the value, so appending to it never
// overwrites the data that follows. Out of range arguments yield nil.
func SliceValue(buf []byte, valueOffset, valueLength int) []byte {
	if valueOffset < 0 || valueLength < 0 || valueOffset > len(buf) ||
		valueLength > len(buf)-valueOffset {
		return nil
	}
	end := valueOffset + valueLength
	return buf[valueOffset:end:end]
}

// Element is a single decoded DER element. Both slices are views into the
// buffer the element was read from.
type Element struct {
	Tag Tag
	// Value holds the value octets.
	Value []byte
	// Raw holds the complete encoding, header and value.
	Raw []byte
}

// ReadElement reads the element starting at offset and returns it together
// with the offset directly following it.
func ReadElement(buf []byte, offset int) (Element, int, error) {
	tag, valueOffset, valueLength, err := ReadTagAndLength(buf, offset)
	if err != nil {
		return Element{}, 0, err
	}
	next := valueOffset + valueLength
	return Element{
		Tag:   tag,
		Value: SliceValue(buf, valueOffset, valueLength),
		Raw:   SliceValue(buf, offset, next-offset),
	}, next, nil
}
