/*
 * EM2200 - Resolution state machine
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
	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/emu/bank"
	"github.com/rcornwell/EM2200/util/debug"
)

type mode int

const (
	modeDirect mode = iota
	modeCall
	modeValidate
)

type step int

const (
	stepSelect  step = iota // Pick data or call path.
	stepData                // Interpret descriptor as a data reference.
	stepAccess              // Read/write check of data reference.
	stepCall                // Interpret descriptor as a call target.
	stepLimits              // Limits check of final bank.
	stepTranslate           // Form the real address.
	stepDone
)

var stepNames = [...]string{"select", "data", "access", "call", "limits", "translate", "done"}

// Working state of one resolution.
type walk struct {
	mode            mode
	step            step
	va              address.VirtualAddress // Original reference.
	level           uint8                  // L,BDI currently examined.
	bdi             uint16
	offset          uint32
	key             access.Info        // Key checked against bank locks.
	privilege       uint8              // Processor privilege.
	required        access.Permissions // Access the reference needs.
	queue           bool               // Queue banks allowed.
	queueRepository bool               // Queue repositories checked, not refused.
	translate       bool               // Real address wanted.
	recursive       bool               // Following a redirection.
	gated           bool               // Passed through a gate.
	void            bool               // Void range reference.
	source          *bank.Descriptor   // Indirect or gate passed through.
	target          *bank.Descriptor   // Final descriptor.
	status          Status
	skip            bool
	address         address.AbsoluteAddress
	addressValid    bool
}

func (r *Resolver) newWalk(m mode, va address.VirtualAddress, key access.Info) *walk {
	return &walk{
		mode:      m,
		va:        va,
		level:     va.Level,
		bdi:       va.BDI,
		offset:    va.Offset,
		key:       key,
		privilege: r.state.ProcessorPrivilege(),
		skip:      true,
	}
}

// Record a refusal.
func (w *walk) deny(bits Status) {
	w.status |= bits
	w.skip = false
}

// Follow an indirect or gate to its target.
func (w *walk) redirect(bd *bank.Descriptor) {
	w.source = bd
	w.level, w.bdi = bd.Target()
	w.recursive = true
}

// Run steps until done or fatal.
func (r *Resolver) run(w *walk) error {
	for w.step != stepDone {
		debug.Debugf("RESOLVER", debugMsk, debugStep, "%s step %s at %o,%05o status %s",
			w.va, stepNames[w.step], w.level, w.bdi, w.status)
		var err error
		switch w.step {
		case stepSelect:
			w.step = stepData
			if w.mode == modeCall || (w.mode == modeValidate && w.required.Enter) {
				w.step = stepCall
			}
		case stepData:
			err = r.data(w)
		case stepAccess:
			r.checkAccess(w)
		case stepCall:
			err = r.call(w)
		case stepLimits:
			r.limits(w)
		case stepTranslate:
			r.translateAddress(w)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Data reference path.
func (r *Resolver) data(w *walk) error {
	bd, err := r.FindBankDescriptor(w.level, w.bdi, w.recursive)
	if err != nil {
		return err
	}
	if bd == nil {
		if w.mode == modeDirect && w.va.IsVoidRange() {
			w.void = true
		} else {
			w.deny(InvalidRealAddress)
		}
		w.step = stepDone
		return nil
	}

	switch bd.Type {
	case bank.Indirect:
		if w.recursive {
			return r.fatal(FatalAddressing, w.level, w.bdi)
		}
		if bd.GeneralFault {
			return r.fatal(GBitSetIndirect, w.level, w.bdi)
		}
		w.redirect(bd)

	case bank.Gate:
		// Outside a call a gate is referenced as data.
		if w.recursive {
			return r.fatal(FatalAddressing, w.level, w.bdi)
		}
		w.dataBank(bd)

	case bank.BasicMode, bank.ExtendedMode:
		w.dataBank(bd)

	case bank.Queue:
		w.target = bd
		if !w.queue {
			w.deny(AccessDenied | InvalidRealAddress)
			w.step = stepDone
			return nil
		}
		w.step = stepAccess

	case bank.QueueRepository:
		w.target = bd
		if !w.queueRepository {
			w.deny(AccessDenied | InvalidRealAddress | QBRFound)
			w.step = stepDone
			return nil
		}
		w.status |= QBRFound
		if !readWriteAllowed(w, bd) {
			w.deny(AccessDenied)
		}
		w.step = stepTranslate

	default:
		return r.fatal(BDTypeInvalid, w.level, w.bdi)
	}
	return nil
}

// Terminal data bank, general fault is reported not raised.
func (w *walk) dataBank(bd *bank.Descriptor) {
	w.target = bd
	if bd.GeneralFault {
		w.deny(GeneralFault)
	}
	w.step = stepAccess
}

// GAP/SAP check for a data reference.
func (r *Resolver) checkAccess(w *walk) {
	required := w.required
	if w.target.Type == bank.Queue {
		required.Enter = false
	}
	if !access.CheckAccess(required, w.key, w.target.Lock, w.target.GAP, w.target.SAP) {
		w.deny(AccessDenied)
	}
	w.step = stepLimits
}

func readWriteAllowed(w *walk, bd *bank.Descriptor) bool {
	required := access.Permissions{Read: w.required.Read, Write: w.required.Write}
	return access.CheckAccess(required, w.key, bd.Lock, bd.GAP, bd.SAP)
}

// Call target path.
func (r *Resolver) call(w *walk) error {
	bd, err := r.FindBankDescriptor(w.level, w.bdi, w.recursive)
	if err != nil {
		return err
	}
	if bd == nil {
		w.deny(InvalidRealAddress)
		w.step = stepDone
		return nil
	}

	switch bd.Type {
	case bank.Gate:
		if w.recursive {
			return r.fatal(FatalAddressing, w.level, w.bdi)
		}
		w.gated = true
		if bd.GeneralFault {
			return r.fatal(GBitSetIndirect, w.level, w.bdi)
		}
		if !bd.InLimits(w.offset) {
			w.deny(InvalidRealAddress)
			w.step = stepDone
			return nil
		}
		enter := access.Permissions{Enter: true}
		if !access.CheckAccess(enter, w.key, bd.Lock, bd.GAP, bd.SAP) {
			w.deny(GateViolation | InvalidRealAddress)
			w.step = stepDone
			return nil
		}
		w.redirect(bd)
		return nil

	case bank.Indirect:
		if w.recursive {
			return r.fatal(FatalAddressing, w.level, w.bdi)
		}
		if bd.GeneralFault {
			return r.fatal(GBitSetIndirect, w.level, w.bdi)
		}
		w.redirect(bd)
		return nil

	case bank.Queue:
		w.target = bd
		if !w.queue {
			w.deny(AccessDenied | InvalidRealAddress)
			w.step = stepDone
			return nil
		}
		if !readWriteAllowed(w, bd) {
			w.deny(AccessDenied)
		}

	case bank.QueueRepository:
		w.target = bd
		w.deny(AccessDenied | InvalidRealAddress | QBRFound)
		w.step = stepDone
		return nil

	case bank.BasicMode, bank.ExtendedMode:

	default:
		return r.fatal(BDTypeInvalid, w.level, w.bdi)
	}

	w.target = bd
	enter := true
	if w.gated || bd.Type == bank.BasicMode {
		enter = access.CheckAccess(access.Permissions{Enter: true}, w.key, bd.Lock, bd.GAP, bd.SAP)
	}
	if !enter {
		w.deny(AccessDenied)
	} else if bd.Type != bank.Queue && bd.GeneralFault {
		w.deny(GeneralFault)
	}
	w.step = stepLimits
	return nil
}

// Offset and large bank check of the final bank.
func (r *Resolver) limits(w *walk) {
	limitsBad := !w.target.InLimits(w.offset)
	accessBad := w.target.LargeBank && w.required.Enter
	if limitsBad || accessBad {
		w.deny(LimitsViolation | InvalidRealAddress)
		w.status &^= AccessDenied
	}
	if limitsBad {
		w.step = stepDone
		return
	}
	w.step = stepTranslate
}

// Form the real address. Validate only discloses it on request below
// privilege 2.
func (r *Resolver) translateAddress(w *walk) {
	if w.mode != modeValidate || (w.translate && w.privilege < 2) {
		w.address = w.target.Base.AddOffset(w.offset)
		w.addressValid = true
	} else {
		w.status |= InvalidRealAddress
	}
	w.step = stepDone
}
