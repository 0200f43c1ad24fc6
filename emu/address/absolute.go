/*
 * EM2200 - Absolute storage addresses.
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

package address

import "fmt"

const (
	MaxUPI      = 15        // Highest storage unit.
	SegmentMask = 0x1FFFFFF // Segment field, 25 bits
)

// Location in primary storage.
type AbsoluteAddress struct {
	UPI     uint8  // Storage unit.
	Segment uint32 // Segment within unit.
	Offset  uint32 // Word offset within segment.
}

// Return address moved by offset words.
func (a AbsoluteAddress) AddOffset(offset uint32) AbsoluteAddress {
	return AbsoluteAddress{UPI: a.UPI, Segment: a.Segment, Offset: a.Offset + offset}
}

func (a AbsoluteAddress) String() string {
	return fmt.Sprintf("0%o:0%o:%012o", a.UPI, a.Segment, a.Offset)
}
