/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

      http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

// Package nodeid resolves the spatially unique node identifier ⟨𝒍⟩ shared
// by the HLC factory and the vector clock coordinator. It is a direct
// adaptation of the original logical-clock Config functional-option
// scaffolding: the clock/ticker half of that scaffolding moved into
// timesource.Source, while the location half lives here.
package nodeid

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"os"
)

// Option configures how a node identifier is resolved.
type Option func(*uint16)

// WithID explicitly assigns the node identifier.
func WithID(id uint16) Option {
	return func(n *uint16) { *n = id }
}

// WithEnv resolves the node identifier from the CONFIG_CHRONOID_NODE_ID
// environment variable, hashed down to 16 bits so arbitrary strings
// (hostnames, pod names) can be used as a stable node name.
func WithEnv() Option {
	return func(n *uint16) {
		h := sha256.New()
		h.Write([]byte(os.Getenv("CONFIG_CHRONOID_NODE_ID")))
		sum := h.Sum(nil)
		*n = uint16(sum[0])<<8 | uint16(sum[1])
	}
}

// WithRandom resolves the node identifier using a cryptographic random
// generator. This is the default when no option is supplied.
func WithRandom() Option {
	return func(n *uint16) {
		var b [2]byte
		if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
			panic("nodeid: random source failed: " + err.Error())
		}
		*n = uint16(b[0])<<8 | uint16(b[1])
	}
}

// Resolve applies opts in order, defaulting to WithRandom when none are
// given, and returns the resolved node identifier.
func Resolve(opts ...Option) uint16 {
	var n uint16
	if len(opts) == 0 {
		opts = []Option{WithRandom()}
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}
