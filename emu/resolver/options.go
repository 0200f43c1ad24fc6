/*
 * EM2200 - Resolution options and results
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

package resolver

import (
	"fmt"

	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/emu/bank"
)

// Validate option word bits.
const (
	optQueue           uint64 = 020000000000 // tq
	optAlternateKey    uint64 = 004000000000 // aake
	optQueueRepository uint64 = 002000000000 // tqbr
	optTranslate       uint64 = 001000000000 // tr
	optEnter           uint64 = 000400000000 // e
	optRead            uint64 = 000200000000 // r
	optWrite           uint64 = 000100000000 // w
	optKeyMask         uint64 = 0777777
)

// Options for a call style reference.
type CallOptions struct {
	Queue bool // Queue bank access requested.
	Read  bool
	Write bool
}

// Options for translate and validate.
type ValidateOptions struct {
	Queue              bool // tq, check a queue bank.
	AlternateKeyEnable bool // aake, use AlternateKey.
	QueueRepository    bool // tqbr, check a queue repository.
	Translate          bool // tr, return the real address.
	Enter              bool // e, take the call path.
	Read               bool
	Write              bool
	AlternateKey       access.Info
}

// Decode the option word.
func DecodeValidateOptions(word uint64) ValidateOptions {
	return ValidateOptions{
		Queue:              (word & optQueue) != 0,
		AlternateKeyEnable: (word & optAlternateKey) != 0,
		QueueRepository:    (word & optQueueRepository) != 0,
		Translate:          (word & optTranslate) != 0,
		Enter:              (word & optEnter) != 0,
		Read:               (word & optRead) != 0,
		Write:              (word & optWrite) != 0,
		AlternateKey:       access.NewInfo(uint32(word & optKeyMask)),
	}
}

// Encode back into an option word.
func (o ValidateOptions) Word() uint64 {
	word := uint64(0)
	for _, opt := range []struct {
		set bool
		bit uint64
	}{
		{o.Queue, optQueue},
		{o.AlternateKeyEnable, optAlternateKey},
		{o.QueueRepository, optQueueRepository},
		{o.Translate, optTranslate},
		{o.Enter, optEnter},
		{o.Read, optRead},
		{o.Write, optWrite},
	} {
		if opt.set {
			word |= opt.bit
		}
	}
	return word | uint64(o.AlternateKey.Half())&optKeyMask
}

// Outcome of a successful resolution.
type Resolution struct {
	Void         bool                    // Reference to the void range.
	Level        uint8                   // L,BDI of the final bank.
	BDI          uint16
	Offset       uint32                  // Offset of reference.
	Descriptor   *bank.Descriptor        // Final descriptor.
	Source       *bank.Descriptor        // Gate or indirect passed through.
	Gated        bool                    // Entered through a gate.
	Address      address.AbsoluteAddress // Real address of the reference.
	AddressValid bool
}

// Virtual address of the final bank.
func (r *Resolution) VirtualAddress() address.VirtualAddress {
	return address.VirtualAddress{Level: r.Level, BDI: r.BDI, Offset: r.Offset}
}

func (r *Resolution) String() string {
	if r.Void {
		return "void " + r.VirtualAddress().String()
	}
	str := fmt.Sprintf("%s %s", r.VirtualAddress(), r.Descriptor)
	if r.AddressValid {
		str += " real:" + r.Address.String()
	}
	return str
}

// Result of translate and validate.
type ValidationReport struct {
	Status       Status
	RealAddress  address.AbsoluteAddress
	AddressValid bool
	SkipNext     bool  // Skip next instruction.
	Privilege    uint8 // Processor privilege at time of check.
}

// Return the two status words. Nothing is disclosed above privilege 1.
func (r *ValidationReport) Words() (uint64, uint64) {
	if r.Privilege > 1 {
		return 0, 0
	}
	word0 := uint64(r.Status & statusMask)
	word1 := uint64(0)
	if r.AddressValid {
		word0 |= uint64(r.RealAddress.Segment) & address.SegmentMask
		word1 = uint64(r.RealAddress.UPI)<<32 | uint64(r.RealAddress.Offset)
	}
	return word0, word1
}

func (r *ValidationReport) String() string {
	str := "status:" + r.Status.String()
	if r.AddressValid {
		str += " real:" + r.RealAddress.String()
	}
	if r.SkipNext {
		str += " skip"
	}
	return str
}
