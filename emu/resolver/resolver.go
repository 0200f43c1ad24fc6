/*
 * EM2200 - Bank resolver
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
	"errors"

	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/emu/bank"
	"github.com/rcornwell/EM2200/emu/register"
	"github.com/rcornwell/EM2200/util/debug"
)

// Processor state consulted during a resolution.
type State interface {
	BaseRegister(index int) *register.BaseRegister
	AccessKey() access.Info
	ProcessorPrivilege() uint8
}

// Word read primitive, returns true if the word does not exist.
type Storage interface {
	GetWord(addr address.AbsoluteAddress) (uint64, bool)
}

const (
	// Debug options.
	debugStep = 1 << iota
	debugFault
	debugDeny
)

var debugOption = map[string]int{
	"STEP":  debugStep,
	"FAULT": debugFault,
	"DENY":  debugDeny,
}

var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("resolver debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Resolver for one processor.
type Resolver struct {
	state   State
	storage Storage
}

// Create a resolver reading through storage for the processor state.
func New(state State, storage Storage) *Resolver {
	return &Resolver{state: state, storage: storage}
}

// Locate the descriptor for level, bdi. Outside a redirection a missing or
// inaccessible descriptor returns nil; during one it is fatal.
func (r *Resolver) FindBankDescriptor(level uint8, bdi uint16, recursive bool) (*bank.Descriptor, error) {
	va := address.VirtualAddress{Level: level, BDI: bdi}
	if va.IsVoidRange() {
		if recursive {
			return nil, r.fatal(FatalAddressing, level, bdi)
		}
		return nil, nil
	}

	bdt := r.state.BaseRegister(register.BDTBase + int(level))
	offset := uint32(bdi) * bank.Size
	read := access.Permissions{Read: true}
	if bdt == nil || !bdt.CheckAccessLimits(offset, bank.Size, read, r.state.AccessKey()) {
		if recursive {
			return nil, r.fatal(FatalAddressing, level, bdi)
		}
		return nil, nil
	}

	var words [bank.Size]uint64
	for i := range words {
		word, err := r.storage.GetWord(bdt.Address(offset + uint32(i)))
		if err {
			if recursive {
				return nil, r.fatal(FatalAddressing, level, bdi)
			}
			return nil, nil
		}
		words[i] = word
	}
	bd := bank.Decode(words)
	debug.Debugf("RESOLVER", debugMsk, debugStep, "BD %o,%05o %s", level, bdi, bd)
	return bd, nil
}

// Resolve a data reference. Queue banks are only accepted when queue is set.
func (r *Resolver) ResolveDirect(va address.VirtualAddress, required access.Permissions, queue bool) (*Resolution, error) {
	w := r.newWalk(modeDirect, va, r.state.AccessKey())
	w.required = required
	w.queue = queue
	w.translate = true
	if err := r.run(w); err != nil {
		return nil, err
	}
	return r.finish(w)
}

// Resolve a call or goto target, passing through gates.
func (r *Resolver) ResolveCallEntry(va address.VirtualAddress, opts CallOptions) (*Resolution, error) {
	w := r.newWalk(modeCall, va, r.state.AccessKey())
	w.required = access.Permissions{Enter: true, Read: opts.Read, Write: opts.Write}
	w.queue = opts.Queue
	w.translate = true
	if err := r.run(w); err != nil {
		return nil, err
	}
	return r.finish(w)
}

// Translate and validate. Denials are reported in the status, only fatal
// faults are returned as errors.
func (r *Resolver) ValidateAddress(va address.VirtualAddress, opts ValidateOptions) (*ValidationReport, error) {
	key := r.state.AccessKey()
	if opts.AlternateKeyEnable {
		key = opts.AlternateKey
	}
	w := r.newWalk(modeValidate, va, key)
	w.required = access.Permissions{Enter: opts.Enter, Read: opts.Read, Write: opts.Write}
	w.queue = opts.Queue
	w.queueRepository = opts.QueueRepository
	w.translate = opts.Translate
	if err := r.run(w); err != nil {
		return nil, err
	}
	return &ValidationReport{
		Status:       w.status,
		RealAddress:  w.address,
		AddressValid: w.addressValid,
		SkipNext:     w.skip,
		Privilege:    w.privilege,
	}, nil
}

// Build the result for the direct and call modes.
func (r *Resolver) finish(w *walk) (*Resolution, error) {
	res := &Resolution{
		Void:         w.void,
		Level:        w.level,
		BDI:          w.bdi,
		Offset:       w.offset,
		Descriptor:   w.target,
		Source:       w.source,
		Gated:        w.gated,
		Address:      w.address,
		AddressValid: w.addressValid,
	}
	if w.status != 0 {
		debug.Debugf("RESOLVER", debugMsk, debugDeny, "%s denied %s", w.va, w.status)
		if w.target == nil {
			res = nil
		}
		return nil, &Denial{Status: w.status, Resolution: res}
	}
	return res, nil
}

func (r *Resolver) fatal(reason Reason, level uint8, bdi uint16) *Fault {
	f := fault(reason, level, bdi)
	debug.Debugf("RESOLVER", debugMsk, debugFault, "%s", f)
	return f
}
