// Copyright 2024 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package provider defines the boundary to the market-data provider: a
// session delivering typed events, services creating requests, and the
// ordered element trees that carry request and response payloads.
//
// The element model follows the provider's schema: an element has a name and
// holds exactly one of a scalar value, an ordered list of named sub-elements
// (a complex element), or an ordered list of array values. Ordering is
// significant, since the results are reported in the order the provider sends
// them.
//
// Implementations of Session live elsewhere (see package bridge). TestSession
// is a scripted Session for tests.
package provider
