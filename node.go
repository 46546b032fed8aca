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

package chronoid

import (
	"strconv"

	"github.com/fogfish/chronoid/internal/nodeid"
)

// NodeID names the raw uint16 node identifier shared by hlc.Factory and
// vclock.Coordinator. hlc and vclock accept and return plain uint16 at
// their call boundaries (that value crosses into packed wire formats
// with no room for a wrapper type); NodeID exists for callers that want
// a documented, printable handle to pass between the two.
type NodeID uint16

// String renders the decimal node id, matching the form used by the HLC
// and vector clock text encodings.
func (n NodeID) String() string { return strconv.FormatUint(uint64(n), 10) }

// ParseNodeID parses the decimal form produced by String.
func ParseNodeID(s string) (NodeID, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return NodeID(v), nil
}

// ResolveNodeID resolves a node identifier from explicit configuration,
// the environment, or a random source, deferring to internal/nodeid.
func ResolveNodeID(opts ...nodeid.Option) NodeID {
	return NodeID(nodeid.Resolve(opts...))
}
