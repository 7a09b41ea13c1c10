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
	"crypto/sha256"

	"github.com/hashicorp/golang-lru/arc/v2"

	"github.com/scionproto/dnpki/pkg/private/serrors"
)

// Cache maintains an Adaptive Replacement Cache of decoded principals, keyed
// by the digest of the DER encoded name. Failed decodes are not cached.
//
// A Cache is safe for concurrent use.
type Cache struct {
	decoder Decoder
	cache   *arc.ARCCache[[sha256.Size]byte, Principal]
}

// NewCache returns a cache holding up to size principals that decodes with
// the given decoder on a miss.
func NewCache(size int, dec Decoder) (*Cache, error) {
	cache, err := arc.NewARC[[sha256.Size]byte, Principal](size)
	if err != nil {
		return nil, serrors.Wrap("creating principal cache", err, "size", size)
	}
	return &Cache{
		decoder: dec,
		cache:   cache,
	}, nil
}

// Decode returns the principal for the DER encoded name. The result is a
// copy and may be modified by the caller.
func (c *Cache) Decode(raw []byte) (Principal, error) {
	key := sha256.Sum256(raw)
	if p, ok := c.cache.Get(key); ok {
		c.decoder.Metrics.lookup(LookupHit)
		return p.Copy(), nil
	}
	c.decoder.Metrics.lookup(LookupMiss)
	p, err := c.decoder.Decode(raw)
	if err != nil {
		return Principal{}, err
	}
	c.cache.Add(key, p.Copy())
	return p, nil
}

// Len returns the number of cached principals.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Purge removes all cached principals.
func (c *Cache) Purge() {
	c.cache.Purge()
}
