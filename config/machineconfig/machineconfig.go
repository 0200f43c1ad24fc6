/*
 * EM2200 - Machine configuration options
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

package machineconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	config "github.com/rcornwell/EM2200/config/configparser"
	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/emu/bank"
	"github.com/rcornwell/EM2200/emu/core"
	"github.com/rcornwell/EM2200/emu/memory"
	"github.com/rcornwell/EM2200/emu/processor"
	"github.com/rcornwell/EM2200/emu/register"
	"github.com/rcornwell/EM2200/util/trace"
)

/*
   Machine lines, numbers in octal:

   PROCESSORS n
   STORAGE upi SEGMENTS=n SIZE=n
   BDT level UPI=n SEGMENT=n OFFSET=n SIZE=n RING=n DOMAIN=n GAP=perm SAP=perm
   BANK lbdi TYPE=type RING=n DOMAIN=n GAP=perm SAP=perm LOWER=n UPPER=n
             UPI=n SEGMENT=n OFFSET=n TARGET=lbdi LARGE GFAULT
   KEY cpu RING=n DOMAIN=n
   DESIGNATOR cpu PRIVILEGE=n BASIC DB31
   TRACE op...
*/

// Bank descriptor table for one level.
type bdtDef struct {
	base  address.AbsoluteAddress
	size  uint32
	lock  access.Info
	gap   access.Permissions
	sap   access.Permissions
	valid bool
}

type machine struct {
	processors  int
	storage     *memory.Storage
	bdt         [register.NumLevels]bdtDef
	keys        map[int]access.Info
	designators map[int]processor.Designator
}

var mach = newMachine()

func newMachine() *machine {
	return &machine{
		processors:  1,
		storage:     memory.Default(),
		keys:        map[int]access.Info{},
		designators: map[int]processor.Designator{},
	}
}

// register machine options on initialize.
func init() {
	config.RegisterModel("PROCESSORS", config.TypeModel, setProcessors)
	config.RegisterModel("STORAGE", config.TypeModel, setStorage)
	config.RegisterModel("BDT", config.TypeModel, setBDT)
	config.RegisterModel("BANK", config.TypeModel, setBank)
	config.RegisterModel("KEY", config.TypeModel, setKey)
	config.RegisterModel("DESIGNATOR", config.TypeModel, setDesignator)
	config.RegisterModel("TRACE", config.TypeOptions, setTrace)
}

// Forget configured machine, storage is left alone.
func Reset() {
	mach = newMachine()
}

// Create core from configured machine.
func Build() (*core.Core, error) {
	c, err := core.NewCore(mach.processors, mach.storage)
	if err != nil {
		return nil, err
	}
	for cpu := range c.Processors() {
		p := c.Processor(cpu)
		for level, def := range mach.bdt {
			if !def.valid {
				continue
			}
			br := register.FromLimits(def.base, 0, def.size-1, def.lock, def.gap, def.sap)
			if err := p.LoadBaseRegister(register.BDTBase+level, br); err != nil {
				return nil, err
			}
		}
		if key, ok := mach.keys[cpu]; ok {
			p.SetAccessKey(key)
		}
		if d, ok := mach.designators[cpu]; ok {
			if err := p.SetDesignator(d); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Octal value of option.
func octal(opt config.Option, limit uint64) (uint64, error) {
	if opt.EqualOpt == "" {
		return 0, fmt.Errorf("%s requires a value", opt.Name)
	}
	value, err := strconv.ParseUint(opt.EqualOpt, 8, 64)
	if err != nil {
		return 0, fmt.Errorf("%s value not octal: %s", opt.Name, opt.EqualOpt)
	}
	if value > limit {
		return 0, fmt.Errorf("%s value too large: %s", opt.Name, opt.EqualOpt)
	}
	return value, nil
}

func checkComma(opt config.Option) error {
	if len(opt.Value) != 0 {
		return errors.New("option does not take a list: " + opt.Name)
	}
	return nil
}

func setProcessors(number uint32, _ string, options []config.Option) error {
	if len(options) != 0 {
		return errors.New("processors takes no options")
	}
	if number < 1 || number > core.MaxProcessors {
		return fmt.Errorf("number of processors must be 1 to %d: %d", core.MaxProcessors, number)
	}
	mach.processors = int(number)
	return nil
}

func setStorage(number uint32, _ string, options []config.Option) error {
	if number > address.MaxUPI {
		return fmt.Errorf("storage unit out of range: %o", number)
	}
	count := uint64(1)
	size := uint64(0)
	for _, opt := range options {
		if err := checkComma(opt); err != nil {
			return err
		}
		var err error
		switch strings.ToUpper(opt.Name) {
		case "SEGMENTS":
			count, err = octal(opt, address.SegmentMask)
		case "SIZE":
			size, err = octal(opt, 0xffffffff)
		default:
			err = errors.New("storage option invalid: " + opt.Name)
		}
		if err != nil {
			return err
		}
	}
	if size == 0 {
		return errors.New("storage requires SIZE")
	}
	return mach.storage.AllocateSegments(uint8(number), uint32(count), uint32(size))
}

// Options shared by BDT and BANK lines.
func baseOption(opt config.Option, base *address.AbsoluteAddress, lock *access.Info,
	gap, sap *access.Permissions) (bool, error) {
	var value uint64
	var err error
	switch strings.ToUpper(opt.Name) {
	case "UPI":
		value, err = octal(opt, address.MaxUPI)
		base.UPI = uint8(value)
	case "SEGMENT":
		value, err = octal(opt, address.SegmentMask)
		base.Segment = uint32(value)
	case "OFFSET":
		value, err = octal(opt, 0xffffffff)
		base.Offset = uint32(value)
	case "RING":
		value, err = octal(opt, 3)
		lock.Ring = uint8(value)
	case "DOMAIN":
		value, err = octal(opt, 0177777)
		lock.Domain = uint16(value)
	case "GAP":
		*gap, err = access.ParsePermissions(opt.EqualOpt)
	case "SAP":
		*sap, err = access.ParsePermissions(opt.EqualOpt)
	default:
		return false, nil
	}
	return true, err
}

func setBDT(number uint32, _ string, options []config.Option) error {
	if number >= register.NumLevels {
		return fmt.Errorf("bank level out of range: %o", number)
	}
	def := bdtDef{valid: true}
	for _, opt := range options {
		if err := checkComma(opt); err != nil {
			return err
		}
		ok, err := baseOption(opt, &def.base, &def.lock, &def.gap, &def.sap)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if strings.ToUpper(opt.Name) != "SIZE" {
			return errors.New("bdt option invalid: " + opt.Name)
		}
		value, err := octal(opt, 0777777)
		if err != nil {
			return err
		}
		def.size = uint32(value)
	}
	if def.size < bank.Size {
		return fmt.Errorf("bdt %o requires SIZE of at least %o", number, bank.Size)
	}
	mach.bdt[number] = def
	return nil
}

func setBank(number uint32, _ string, options []config.Option) error {
	va := address.FromLBDI(number, 0)
	if va.LBDI() != number {
		return fmt.Errorf("bank L,BDI out of range: %o", number)
	}
	if va.IsVoidRange() {
		return fmt.Errorf("bank %s in void range", va)
	}
	def := mach.bdt[va.Level]
	if !def.valid {
		return fmt.Errorf("no bdt for level %o", va.Level)
	}
	offset := uint32(va.BDI) * bank.Size
	if offset+bank.Size > def.size {
		return fmt.Errorf("bank %s outside bdt", va)
	}

	bd := bank.Descriptor{}
	for _, opt := range options {
		if err := checkComma(opt); err != nil {
			return err
		}
		ok, err := baseOption(opt, &bd.Base, &bd.Lock, &bd.GAP, &bd.SAP)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		var value uint64
		switch strings.ToUpper(opt.Name) {
		case "TYPE":
			bd.Type, err = bank.ParseType(opt.EqualOpt)
		case "LOWER":
			value, err = octal(opt, 0777)
			bd.LowerLimit = uint32(value)
		case "UPPER":
			value, err = octal(opt, 0777777777)
			bd.UpperLimit = uint32(value)
		case "TARGET":
			value, err = octal(opt, 0777777)
			bd.TargetLBDI = uint32(value)
		case "LARGE":
			bd.LargeBank = true
		case "GFAULT":
			bd.GeneralFault = true
		default:
			err = errors.New("bank option invalid: " + opt.Name)
		}
		if err != nil {
			return err
		}
	}
	words := bd.Encode()
	if mach.storage.PutWords(def.base.AddOffset(offset), words[:]) {
		return fmt.Errorf("bank %s descriptor not in storage %s", va, def.base.AddOffset(offset))
	}
	return nil
}

func checkCPU(number uint32) error {
	if number >= core.MaxProcessors {
		return fmt.Errorf("processor out of range: %o", number)
	}
	return nil
}

func setKey(number uint32, _ string, options []config.Option) error {
	if err := checkCPU(number); err != nil {
		return err
	}
	key := access.Info{}
	for _, opt := range options {
		if err := checkComma(opt); err != nil {
			return err
		}
		var value uint64
		var err error
		switch strings.ToUpper(opt.Name) {
		case "RING":
			value, err = octal(opt, 3)
			key.Ring = uint8(value)
		case "DOMAIN":
			value, err = octal(opt, 0177777)
			key.Domain = uint16(value)
		default:
			err = errors.New("key option invalid: " + opt.Name)
		}
		if err != nil {
			return err
		}
	}
	mach.keys[int(number)] = key
	return nil
}

func setDesignator(number uint32, _ string, options []config.Option) error {
	if err := checkCPU(number); err != nil {
		return err
	}
	d := processor.Designator{}
	for _, opt := range options {
		if err := checkComma(opt); err != nil {
			return err
		}
		switch strings.ToUpper(opt.Name) {
		case "PRIVILEGE":
			value, err := octal(opt, 3)
			if err != nil {
				return err
			}
			d.Privilege = uint8(value)
		case "BASIC":
			d.BasicMode = true
		case "DB31":
			d.DB31 = true
		default:
			return errors.New("designator option invalid: " + opt.Name)
		}
	}
	mach.designators[int(number)] = d
	return nil
}

// Enable tracing of operations, creating a database in the current directory.
func setTrace(_ uint32, first string, options []config.Option) error {
	ops := []string{first}
	for _, opt := range options {
		if opt.EqualOpt != "" {
			return errors.New("trace option can't have equals: " + opt.Name)
		}
		ops = append(ops, opt.Name)
		for _, value := range opt.Value {
			ops = append(ops, *value)
		}
	}

	s := trace.Current()
	if s == nil {
		var err error
		s, err = trace.Create(".", "")
		if err != nil {
			return err
		}
		trace.Start(s)
	}
	for _, op := range ops {
		s.Enable(op)
	}
	return nil
}
