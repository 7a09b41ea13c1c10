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

package principal

import (
	"encoding/asn1"
	"errors"

	"golang.org/x/crypto/cryptobyte"

	"github.com/scionproto/dnpki/pkg/log"
	"github.com/scionproto/dnpki/pkg/private/serrors"
	"github.com/scionproto/dnpki/pkg/scrypto/der"
)

var (
	// ErrTruncated indicates that an element of the name cannot be read
	// completely. The underlying scanner error is joined, i.e., errors.Is
	// also matches the scanner sentinel.
	ErrTruncated = der.ErrTruncated
	// ErrInvalidStructure indicates that the name is not a SEQUENCE of SETs
	// of SEQUENCEs.
	ErrInvalidStructure = serrors.New("invalid name structure")
	// ErrUnsupportedStringType indicates a recognized attribute with a value
	// of an unsupported string type. The attribute is dropped.
	ErrUnsupportedStringType = serrors.New("unsupported string type")
	// ErrInvalidAttribute indicates an attribute whose type or value cannot
	// be parsed. The attribute is dropped.
	ErrInvalidAttribute = serrors.New("invalid attribute")
)

// Decode decodes the DER encoded name with the zero Decoder.
func Decode(raw []byte) (Principal, error) {
	return Decoder{}.Decode(raw)
}

// Decoder decodes DER encoded names. The zero value is ready to use. A
// Decoder is stateless and can be used concurrently.
type Decoder struct {
	// Logger is used to report dropped attributes at debug level. If nil,
	// the root logger is used.
	Logger log.Logger
	// Metrics is optional.
	Metrics Metrics
}

// Decode decodes the DER encoded RDNSequence in raw. Data following the
// outer SEQUENCE is ignored. On error, the returned principal is empty.
//
// The returned principal does not reference raw.
func (d Decoder) Decode(raw []byte) (Principal, error) {
	p, err := d.decode(raw)
	if err != nil {
		d.Metrics.decoded(ResultErrParse)
		return Principal{}, err
	}
	d.Metrics.decoded(ResultOk)
	return p, nil
}

func (d Decoder) decode(raw []byte) (Principal, error) {
	outer, _, err := der.ReadElement(raw, 0)
	if err != nil {
		return Principal{}, readError(err, 0)
	}
	if outer.Tag != der.TagSequence {
		return Principal{}, serrors.JoinNoStack(ErrInvalidStructure, nil,
			"expected", der.TagSequence, "actual", outer.Tag)
	}
	var p Principal
	rdns := outer.Value
	for off := 0; off < len(rdns); {
		rdn, next, err := der.ReadElement(rdns, off)
		if err != nil {
			return Principal{}, readError(err, off)
		}
		if rdn.Tag != der.TagSet {
			return Principal{}, serrors.JoinNoStack(ErrInvalidStructure, nil,
				"offset", off, "expected", der.TagSet, "actual", rdn.Tag)
		}
		if err := d.decodeRDN(&p, rdn.Value); err != nil {
			return Principal{}, serrors.WrapNoStack("decoding RDN", err, "offset", off)
		}
		off = next
	}
	return p, nil
}

// decodeRDN decodes all attributes of a single RelativeDistinguishedName.
// Only structural errors are returned.
func (d Decoder) decodeRDN(p *Principal, set []byte) error {
	for off := 0; off < len(set); {
		atv, next, err := der.ReadElement(set, off)
		if err != nil {
			return readError(err, off)
		}
		if atv.Tag != der.TagSequence {
			return serrors.JoinNoStack(ErrInvalidStructure, nil,
				"offset", off, "expected", der.TagSequence, "actual", atv.Tag)
		}
		d.decodeAttribute(p, atv.Value)
		off = next
	}
	return nil
}

// decodeAttribute decodes a single AttributeTypeAndValue. Attributes that
// cannot be decoded are dropped.
func (d Decoder) decodeAttribute(p *Principal, atv []byte) {
	s := cryptobyte.String(atv)
	var oid asn1.ObjectIdentifier
	if !s.ReadASN1ObjectIdentifier(&oid) {
		d.drop(ReasonInvalidAttribute, serrors.JoinNoStack(ErrInvalidAttribute, nil,
			"reason", "malformed attribute type"))
		return
	}
	attr, ok := attributes[oid.String()]
	if !ok {
		d.Metrics.ignored()
		return
	}
	value, _, err := der.ReadElement(s, 0)
	if err != nil {
		d.drop(ReasonInvalidAttribute, serrors.JoinNoStack(ErrInvalidAttribute, err,
			"attribute", attr.name))
		return
	}
	text, err := decodeString(value.Tag, value.Value)
	if err != nil {
		reason := ReasonInvalidAttribute
		if errors.Is(err, ErrUnsupportedStringType) {
			reason = ReasonUnsupportedStringType
		}
		d.drop(reason, serrors.WrapNoStack("decoding attribute value", err,
			"attribute", attr.name))
		return
	}
	attr.update(p, text)
}

func (d Decoder) drop(reason string, err error) {
	d.Metrics.dropped(reason)
	logger := d.Logger
	if logger == nil {
		logger = log.Root()
	}
	if logger.Enabled(log.DebugLevel) {
		logger.Debug("Dropped attribute", "reason", reason, "err", err)
	}
}

// readError classifies a scanner error at a structurally required position.
// Indefinite length encodings are reported as is, everything else means that
// the element cannot be read and is reported as truncated.
func readError(err error, offset int) error {
	if errors.Is(err, der.ErrUnsupportedEncoding) || errors.Is(err, ErrTruncated) {
		return serrors.WrapNoStack("reading element", err, "offset", offset)
	}
	return serrors.JoinNoStack(ErrTruncated, err, "offset", offset)
}
