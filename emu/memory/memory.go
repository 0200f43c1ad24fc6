/*
 * EM2200 - Primary storage
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package memory

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/util/debug"
)

const (
	WordMask   uint64 = 0777777_777777 // 36 bit word.
	MaxSegSize uint32 = 0x40000000     // Largest segment in words.
	MaxSegs    uint32 = 64             // Largest number of segments per UPI.
)

const (
	// Debug options.
	debugAlloc = 1 << iota
	debugFault
)

var debugOption = map[string]int{
	"ALLOC": debugAlloc,
	"FAULT": debugFault,
}

// One allocated segment, each word updated atomically.
type segment struct {
	words []atomic.Uint64
}

// Segments owned by one unit.
type unit struct {
	segs atomic.Pointer[[]*segment]
}

// Storage shared by every processor.
type Storage struct {
	mu       sync.Mutex // Guards allocation only.
	units    [address.MaxUPI + 1]unit
	debugMsk int
}

var memory = New()

// Create empty storage.
func New() *Storage {
	return &Storage{}
}

// Return the shared instance.
func Default() *Storage {
	return memory
}

// Allocate count segments of size words on unit upi.
func (s *Storage) AllocateSegments(upi uint8, count uint32, size uint32) error {
	if upi > address.MaxUPI {
		return fmt.Errorf("invalid UPI: %o", upi)
	}
	if count == 0 || size == 0 {
		return errors.New("segment count and size must be non zero")
	}
	if size > MaxSegSize {
		return fmt.Errorf("segment size too large: %o", size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var segs []*segment
	if old := s.units[upi].segs.Load(); old != nil {
		segs = append(segs, *old...)
	}
	if uint32(len(segs))+count > MaxSegs {
		return fmt.Errorf("too many segments on UPI %o", upi)
	}
	for range count {
		segs = append(segs, &segment{words: make([]atomic.Uint64, size)})
	}
	s.units[upi].segs.Store(&segs)
	debug.Debugf("STORAGE", s.debugMsk, debugAlloc, "UPI %o allocated %d segments of %o words", upi, count, size)
	return nil
}

// Release all storage.
func (s *Storage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.units {
		s.units[i].segs.Store(nil)
	}
}

// Number of segments on upi.
func (s *Storage) Segments(upi uint8) int {
	if upi > address.MaxUPI {
		return 0
	}
	segs := s.units[upi].segs.Load()
	if segs == nil {
		return 0
	}
	return len(*segs)
}

// Size of a segment, true if not allocated.
func (s *Storage) SegmentSize(upi uint8, seg uint32) (uint32, bool) {
	sg := s.segment(upi, seg)
	if sg == nil {
		return 0, true
	}
	return uint32(len(sg.words)), false
}

func (s *Storage) segment(upi uint8, seg uint32) *segment {
	if upi > address.MaxUPI {
		return nil
	}
	segs := s.units[upi].segs.Load()
	if segs == nil || seg >= uint32(len(*segs)) {
		return nil
	}
	return (*segs)[seg]
}

// Return word at addr, true if addr does not exist.
func (s *Storage) GetWord(addr address.AbsoluteAddress) (uint64, bool) {
	sg := s.segment(addr.UPI, addr.Segment)
	if sg == nil || addr.Offset >= uint32(len(sg.words)) {
		debug.Debugf("STORAGE", s.debugMsk, debugFault, "read of %s outside storage", addr)
		return 0, true
	}
	return sg.words[addr.Offset].Load(), false
}

// Set word at addr, true if addr does not exist.
func (s *Storage) PutWord(addr address.AbsoluteAddress, data uint64) bool {
	sg := s.segment(addr.UPI, addr.Segment)
	if sg == nil || addr.Offset >= uint32(len(sg.words)) {
		debug.Debugf("STORAGE", s.debugMsk, debugFault, "write of %s outside storage", addr)
		return true
	}
	sg.words[addr.Offset].Store(data & WordMask)
	return false
}

// Store a block of words starting at addr.
func (s *Storage) PutWords(addr address.AbsoluteAddress, data []uint64) bool {
	for i, word := range data {
		if s.PutWord(addr.AddOffset(uint32(i)), word) {
			return true
		}
	}
	return false
}

// Enable debug options.
func (s *Storage) Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("storage debug option invalid: " + opt)
	}
	s.debugMsk |= flag
	return nil
}

// Allocate segments in shared storage.
func AllocateSegments(upi uint8, count uint32, size uint32) error {
	return memory.AllocateSegments(upi, count, size)
}

// Get a word from shared storage.
func GetWord(addr address.AbsoluteAddress) (uint64, bool) {
	return memory.GetWord(addr)
}

// Put a word to shared storage.
func PutWord(addr address.AbsoluteAddress, data uint64) bool {
	return memory.PutWord(addr, data)
}

// Put several words to shared storage.
func PutWords(addr address.AbsoluteAddress, data []uint64) bool {
	return memory.PutWords(addr, data)
}

// Enable debug on shared storage.
func Debug(opt string) error {
	return memory.Debug(opt)
}
