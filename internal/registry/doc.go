/*
 *
 * Copyright 2025 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Package registry implements the RegionRegistry: a fixed-capacity
// name-to-slot map living entirely inside a shared-memory control
// region, so that every process mapping it sees the same state without
// any process-local heap allocation. A companion interprocess mutex and
// condition variable, also resident in the control region, serialize
// writers against each other and let readers block until the next
// publication.
package registry
