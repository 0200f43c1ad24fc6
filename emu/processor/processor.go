/*
 * EM2200 - Instruction processor addressing state
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

package processor

import (
	"errors"
	"fmt"

	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/emu/register"
	"github.com/rcornwell/EM2200/emu/resolver"
	"github.com/rcornwell/EM2200/util/debug"
)

/*
   The addressing side of an instruction processor. Each processor holds
   32 base registers, the active base table for B1 through B15, the
   indicator key register and the designator bits that affect addressing.

   B0        Current extended mode instruction bank.
   B1-B15    Data banks, loaded by LBU. Each has an active base table entry.
   B12-B15   Basic mode banks, selected by DB31.
   B16-B23   Bank descriptor tables for levels 0 through 7.
   B24-B31   Exec banks, loaded by LBE.

   Designators:
     DB14-15  Processor privilege, 0 most privileged.
     DB16     Basic mode.
     DB31     Basic mode base register selection.
*/

const (
	// Debug options.
	debugCmd = 1 << iota
	debugLoad
)

var debugOption = map[string]int{
	"CMD":  debugCmd,
	"LOAD": debugLoad,
}

var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("processor debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Storage seen by a processor.
type Storage interface {
	GetWord(addr address.AbsoluteAddress) (uint64, bool)
}

// Designator register bits relevant to addressing.
type Designator struct {
	Privilege uint8 // DB14-15.
	BasicMode bool  // DB16.
	DB31      bool  // Basic mode register selection.
}

func (d Designator) String() string {
	str := fmt.Sprintf("privilege:%d", d.Privilege)
	if d.BasicMode {
		str += " basic"
	}
	if d.DB31 {
		str += " db31"
	}
	return str
}

type Processor struct {
	ID         int
	regs       *register.Set
	key        access.Info            // Indicator key register access key.
	designator Designator             // Addressing designators.
	par        address.VirtualAddress // Program address register.
	tvaWords   [2]uint64              // Last TVA status.
	resolver   *resolver.Resolver
}

// Create processor attached to storage.
func New(id int, storage Storage) *Processor {
	p := &Processor{
		ID:   id,
		regs: register.NewSet(),
	}
	p.resolver = resolver.New(p, storage)
	return p
}

// Clear registers and designators.
func (p *Processor) Reset() {
	p.regs.Clear()
	p.key = access.Info{}
	p.designator = Designator{}
	p.par = address.VirtualAddress{}
	p.tvaWords = [2]uint64{}
}

// Base register index, nil when out of range.
func (p *Processor) BaseRegister(index int) *register.BaseRegister {
	br, err := p.regs.BaseRegister(index)
	if err != nil {
		return nil
	}
	return &br
}

// Indicator key register access key.
func (p *Processor) AccessKey() access.Info {
	return p.key
}

func (p *Processor) ProcessorPrivilege() uint8 {
	return p.designator.Privilege
}

// Set access key.
func (p *Processor) SetAccessKey(key access.Info) {
	p.key = key
	debug.DebugCPUf(p.ID, debugMsk, debugCmd, "key %s", key)
}

func (p *Processor) Designator() Designator {
	return p.designator
}

// Set designator bits.
func (p *Processor) SetDesignator(d Designator) error {
	if d.Privilege > 3 {
		return fmt.Errorf("processor privilege out of range: %d", d.Privilege)
	}
	p.designator = d
	debug.DebugCPUf(p.ID, debugMsk, debugCmd, "designator %s", d)
	return nil
}

// Program address register.
func (p *Processor) ProgramAddress() address.VirtualAddress {
	return p.par
}

// Status words from the last TVA.
func (p *Processor) ValidateWords() (uint64, uint64) {
	return p.tvaWords[0], p.tvaWords[1]
}

// Register set, used to initialize BDT bases.
func (p *Processor) Registers() *register.Set {
	return p.regs
}

func (p *Processor) Resolver() *resolver.Resolver {
	return p.resolver
}

// Load a base register directly, used by configuration.
func (p *Processor) LoadBaseRegister(index int, br register.BaseRegister) error {
	return p.regs.LoadBaseRegister(index, br)
}
