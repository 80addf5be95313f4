/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
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
 */

/*
Package performance holds the socket and buffer tuning used by the
connection paths.

SOCKET OPTIONS:
===============
Listen builds the TCP listener through net.ListenConfig so socket options
are applied before bind:

	- SO_REUSEPORT (linux, darwin) lets several processes share a port
	- TCP_NODELAY on accepted connections sends small replies immediately
	- read/write buffer sizes are applied per connection when set

Platforms without SO_REUSEPORT ignore the option.

BUFFER POOLING:
===============
Receive buffers come from size-classed sync.Pools so short-lived status
pings do not allocate a fresh chunk per connection.
*/
package performance

import (
	"sync"
)

// Pool size classes.
const (
	SmallBufferSize  = 4 * 1024
	MediumBufferSize = 64 * 1024
	LargeBufferSize  = 1024 * 1024
)

// BufferPool provides a pool of reusable byte buffers of one size.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with the specified buffer size.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]byte, size)
			},
		},
	}
}

// Size returns the length of the buffers handed out.
func (p *BufferPool) Size() int { return p.size }

// Get retrieves a buffer from the pool.
func (p *BufferPool) Get() []byte {
	return p.pool.Get().([]byte)
}

// Put returns a buffer to the pool. Buffers smaller than the pool size are
// dropped.
func (p *BufferPool) Put(buf []byte) {
	if cap(buf) >= p.size {
		p.pool.Put(buf[:p.size])
	}
}

var (
	smallPool  = NewBufferPool(SmallBufferSize)
	mediumPool = NewBufferPool(MediumBufferSize)
	largePool  = NewBufferPool(LargeBufferSize)
)

// GetBufferPool returns the smallest pool whose buffers hold size bytes.
func GetBufferPool(size int) *BufferPool {
	switch {
	case size <= SmallBufferSize:
		return smallPool
	case size <= MediumBufferSize:
		return mediumPool
	default:
		return largePool
	}
}
