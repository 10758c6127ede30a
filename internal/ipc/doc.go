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

// Package ipc provides interprocess synchronization primitives — a
// futex-backed Mutex and Cond — that live inside a shared-memory region
// and coordinate processes rather than goroutines. They are the
// in-memory analogue of sync.Mutex/sync.Cond, addressed by pointer into
// mapped shared memory instead of process-local heap.
package ipc
