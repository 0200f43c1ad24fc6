/*
 * EM2200 - Processor request packets
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

package master

import (
	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/emu/bank"
	"github.com/rcornwell/EM2200/emu/resolver"
)

type Msg int

const (
	Resolve       Msg = 1 + iota // Data reference.
	Call                         // CALL to address.
	Validate                     // TVA with Options.
	LoadBankUser                 // LBU B(Register).
	LoadBankExec                 // LBE B(Register+16).
	SetKey                       // Load access key.
	SetDesignator                // Load designator bits.
	FindBD                       // Read a bank descriptor.
	Show                         // Format processor state named by Item.
	Reset                        // Clear processor.
	TimeClock                    // Periodic tick from timer.
)

var msgNames = map[Msg]string{
	Resolve:       "resolve",
	Call:          "call",
	Validate:      "validate",
	LoadBankUser:  "lbu",
	LoadBankExec:  "lbe",
	SetKey:        "key",
	SetDesignator: "designator",
	FindBD:        "bd",
	Show:          "show",
	Reset:         "reset",
	TimeClock:     "clock",
}

func (m Msg) String() string {
	if str, ok := msgNames[m]; ok {
		return str
	}
	return "unknown"
}

// Request sent to a processor.
type Packet struct {
	Msg       Msg
	CPU       int                    // Processor number.
	Address   address.VirtualAddress // Operand address.
	Register  int                    // Base register for loads.
	Required  access.Permissions     // Access for Resolve.
	Queue     bool                   // Queue banks allowed.
	Options   uint64                 // TVA option word.
	Key       access.Info            // Key for SetKey.
	Privilege uint8                  // Designator for SetDesignator.
	BasicMode bool
	DB31      bool
	Item      string     // What Show formats.
	Reply     chan Reply // Response, may be nil.
}

// Response from a processor.
type Reply struct {
	Resolution *resolver.Resolution
	Report     *resolver.ValidationReport
	Descriptor *bank.Descriptor
	Text       string
	Err        error
}
