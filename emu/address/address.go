/*
 * EM2200 - Virtual and absolute addresses.
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
	LevelMask  uint64 = 07      // Bank level, 3 bits
	BDIMask    uint64 = 077777  // Bank descriptor index, 15 bits
	OffsetMask uint64 = 0777777 // Offset within bank, 18 bits
	WordMask   uint64 = 0777777777777

	levelShift = 33
	bdiShift   = 18

	// Basic mode bank name fields.
	basicExec  uint64 = 0400000000000 // E, exec bank
	basicLS    uint64 = 0040000000000 // LS, level select
	basicBDI   uint64 = 07777         // BDI, 12 bits
	basicShift        = 18
)

// Level, BDI and offset of a reference.
type VirtualAddress struct {
	Level  uint8  // Bank level 0-7.
	BDI    uint16 // Bank descriptor index.
	Offset uint32 // Offset within bank.
}

// Decode a 36 bit word.
func NewVirtualAddress(word uint64) VirtualAddress {
	return VirtualAddress{
		Level:  uint8((word >> levelShift) & LevelMask),
		BDI:    uint16((word >> bdiShift) & BDIMask),
		Offset: uint32(word & OffsetMask),
	}
}

// Build from a combined L,BDI and an offset.
func FromLBDI(lbdi uint32, offset uint32) VirtualAddress {
	return VirtualAddress{
		Level:  uint8((lbdi >> 15) & 07),
		BDI:    uint16(lbdi & 077777),
		Offset: offset & uint32(OffsetMask),
	}
}

// Translate a basic mode E,LS,BDI bank name and an offset into a
// virtual address. Exec banks live on levels 0 and 2, user banks on 4 and 6.
func FromBasicMode(name uint64, offset uint32) VirtualAddress {
	exec := (name & basicExec) != 0
	ls := (name & basicLS) != 0
	var level uint8
	switch {
	case exec && ls:
		level = 0
	case exec:
		level = 2
	case ls:
		level = 6
	default:
		level = 4
	}
	return VirtualAddress{
		Level:  level,
		BDI:    uint16((name >> basicShift) & basicBDI),
		Offset: offset & uint32(OffsetMask),
	}
}

// Return 36 bit encoded form.
func (va VirtualAddress) Word() uint64 {
	return (uint64(va.Level)&LevelMask)<<levelShift |
		(uint64(va.BDI)&BDIMask)<<bdiShift |
		uint64(va.Offset)&OffsetMask
}

// Return combined 18 bit L,BDI.
func (va VirtualAddress) LBDI() uint32 {
	return uint32(va.Level&07)<<15 | uint32(va.BDI)&077777
}

// Reports whether L,BDI lies in the reserved range 0,0 through 0,31.
func (va VirtualAddress) IsVoidRange() bool {
	return va.Level == 0 && va.BDI < 32
}

func (va VirtualAddress) String() string {
	return fmt.Sprintf("%o:%05o:%06o", va.Level, va.BDI, va.Offset)
}
