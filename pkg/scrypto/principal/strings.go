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
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/scionproto/dnpki/pkg/private/serrors"
	"github.com/scionproto/dnpki/pkg/scrypto/der"
)

// stringDecoder converts the value octets of a string type to text. The
// result never references the input.
type stringDecoder func(value []byte) (string, error)

// stringDecoders is indexed by the tag of the attribute value. Tags not
// present are unsupported.
//
// PrintableString and IA5String are subsets of ASCII. T61String is
// decoded as Latin-1, which is what issuers use it for in practice.
var stringDecoders = map[der.Tag]stringDecoder{
	der.TagPrintableString: decodeWith(charmap.ISO8859_1),
	der.TagIA5String:       decodeWith(charmap.ISO8859_1),
	der.TagT61String:       decodeWith(charmap.ISO8859_1),
	der.TagUTF8String:      decodeWith(unicode.UTF8),
	der.TagBMPString:       decodeWith(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)),
}

// decodeWith returns a decoder that transforms the value with the given
// encoding. Ill-formed input is replaced with U+FFFD.
func decodeWith(enc encoding.Encoding) stringDecoder {
	return func(value []byte) (string, error) {
		out, err := enc.NewDecoder().Bytes(value)
		if err != nil {
			return "", serrors.WrapNoStack("decoding string value", err, "encoding", enc)
		}
		return string(out), nil
	}
}

func decodeString(tag der.Tag, value []byte) (string, error) {
	dec, ok := stringDecoders[tag]
	if !ok {
		return "", serrors.JoinNoStack(ErrUnsupportedStringType, nil, "tag", tag)
	}
	return dec(value)
}
