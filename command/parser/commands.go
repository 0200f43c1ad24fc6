/*
 * EM2200 - Console commands
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	command "github.com/rcornwell/EM2200/command/command"
	"github.com/rcornwell/EM2200/emu/access"
	core "github.com/rcornwell/EM2200/emu/core"
	"github.com/rcornwell/EM2200/emu/master"
	"github.com/rcornwell/EM2200/emu/resolver"
)

var cmdList = []cmd{
	{Name: "resolve", Min: 4, Process: resolve, Complete: optionComplete(command.ValidResolve)},
	{Name: "call", Min: 2, Process: call},
	{Name: "tva", Min: 1, Process: tva, Complete: optionComplete(command.ValidValidate)},
	{Name: "lbu", Min: 3, Process: lbu},
	{Name: "lbe", Min: 3, Process: lbe},
	{Name: "show", Min: 2, Process: show, Complete: showComplete},
	{Name: "key", Min: 1, Process: key, Complete: optionComplete(command.ValidKey)},
	{Name: "designator", Min: 3, Process: designator, Complete: optionComplete(command.ValidDesignator)},
	{Name: "cpu", Min: 2, Process: cpu},
	{Name: "examine", Min: 2, Process: examine},
	{Name: "deposit", Min: 3, Process: deposit},
	{Name: "reset", Min: 5, Process: reset},
	{Name: "quit", Min: 4, Process: quit},
}

// Send packet to the current processor.
func send(core *core.Core, packet master.Packet) master.Reply {
	packet.CPU = currentCPU
	return core.Send(packet)
}

// Report error from processor, denials are printed not returned.
func report(err error) error {
	if denial := resolver.AsDenial(err); denial != nil {
		fmt.Fprintf(out, "denied %s\n", denial.Status)
		if denial.Resolution != nil {
			fmt.Fprintln(out, denial.Resolution)
		}
		return nil
	}
	return err
}

// Handle resolve command: resolve va [read] [write] [enter] [queue].
func resolve(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Resolve")
	va, err := line.getVirtual()
	if err != nil {
		return false, err
	}
	optlist, err := line.getOptions(command.ValidResolve)
	if err != nil {
		return false, err
	}
	packet := master.Packet{Msg: master.Resolve, Address: va}
	for _, opt := range optlist {
		switch opt.Name {
		case "read":
			packet.Required.Read = true
		case "write":
			packet.Required.Write = true
		case "enter":
			packet.Required.Enter = true
		case "queue":
			packet.Queue = true
		}
	}
	reply := send(core, packet)
	if reply.Err != nil {
		return false, report(reply.Err)
	}
	fmt.Fprintln(out, reply.Resolution)
	return false, nil
}

// Handle call command.
func call(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Call")
	va, err := line.getVirtual()
	if err != nil {
		return false, err
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	reply := send(core, master.Packet{Msg: master.Call, Address: va})
	if reply.Err != nil {
		return false, report(reply.Err)
	}
	fmt.Fprintln(out, reply.Resolution)
	return false, nil
}

// Handle translate and validate: tva va [options] [key=n].
func tva(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command TVA")
	va, err := line.getVirtual()
	if err != nil {
		return false, err
	}
	optlist, err := line.getOptions(command.ValidValidate)
	if err != nil {
		return false, err
	}
	opts := resolver.ValidateOptions{}
	for _, opt := range optlist {
		switch opt.Name {
		case "read":
			opts.Read = true
		case "write":
			opts.Write = true
		case "enter":
			opts.Enter = true
		case "queue":
			opts.Queue = true
		case "qbr":
			opts.QueueRepository = true
		case "translate":
			opts.Translate = true
		case "key":
			opts.AlternateKeyEnable = true
			opts.AlternateKey = access.NewInfo(uint32(opt.Value))
		}
	}
	reply := send(core, master.Packet{Msg: master.Validate, Address: va, Options: opts.Word()})
	if reply.Err != nil {
		return false, reply.Err
	}
	w0, w1 := reply.Report.Words()
	fmt.Fprintf(out, "%s\n%012o %012o\n", reply.Report, w0, w1)
	return false, nil
}

// Load bank command shared by lbu and lbe.
func loadBank(line *cmdLine, core *core.Core, msg master.Msg) (bool, error) {
	reg, err := line.getOctal(037)
	if err != nil {
		return false, err
	}
	va, err := line.getVirtual()
	if err != nil {
		return false, err
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	reply := send(core, master.Packet{Msg: msg, Register: int(reg), Address: va})
	return false, reply.Err
}

func lbu(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command LBU")
	return loadBank(line, core, master.LoadBankUser)
}

func lbe(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command LBE")
	return loadBank(line, core, master.LoadBankExec)
}

// Show br, abt, key or bd va.
func show(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Show")
	item := line.getWord(false)
	if !slices.Contains(command.ShowItems, item) {
		return false, errors.New("show requires one of: " + strings.Join(command.ShowItems, ", "))
	}
	if item == "bd" {
		va, err := line.getVirtual()
		if err != nil {
			return false, err
		}
		reply := send(core, master.Packet{Msg: master.FindBD, Address: va})
		if reply.Err != nil {
			return false, reply.Err
		}
		if reply.Descriptor == nil {
			fmt.Fprintln(out, "void")
			return false, nil
		}
		fmt.Fprintln(out, reply.Descriptor)
		return false, nil
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	reply := send(core, master.Packet{Msg: master.Show, Item: item})
	if reply.Err != nil {
		return false, reply.Err
	}
	fmt.Fprint(out, reply.Text)
	return false, nil
}

// Load access key: key ring=n domain=n.
func key(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Key")
	optlist, err := line.getOptions(command.ValidKey)
	if err != nil {
		return false, err
	}
	if len(optlist) == 0 {
		return false, errors.New("key requires ring or domain")
	}
	k := access.Info{}
	for _, opt := range optlist {
		switch opt.Name {
		case "ring":
			k.Ring = uint8(opt.Value)
		case "domain":
			k.Domain = uint16(opt.Value)
		}
	}
	return false, send(core, master.Packet{Msg: master.SetKey, Key: k}).Err
}

// Load designator bits: designator privilege=n basic db31.
func designator(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Designator")
	optlist, err := line.getOptions(command.ValidDesignator)
	if err != nil {
		return false, err
	}
	packet := master.Packet{Msg: master.SetDesignator}
	for _, opt := range optlist {
		switch opt.Name {
		case "privilege":
			packet.Privilege = uint8(opt.Value)
		case "basic":
			packet.BasicMode = true
		case "db31":
			packet.DB31 = true
		}
	}
	return false, send(core, packet).Err
}

// Select processor for following commands.
func cpu(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command CPU")
	line.skipSpace()
	if line.isEOL() {
		fmt.Fprintf(out, "cpu %o\n", currentCPU)
		return false, nil
	}
	num, err := line.getOctal(uint64(core.Processors() - 1))
	if err != nil {
		return false, err
	}
	currentCPU = int(num)
	return false, nil
}

// Reset the current processor, or all of them.
func reset(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Reset")
	name := line.getWord(false)
	if err := line.checkEOL(); err != nil {
		return false, err
	}
	switch name {
	case "":
		return false, send(core, master.Packet{Msg: master.Reset}).Err
	case "all":
		core.Broadcast(master.Packet{Msg: master.Reset})
		return false, nil
	}
	return false, errors.New("reset takes no option or all")
}

// Handle commands that quit simulation.
func quit(_ *cmdLine, _ *core.Core) (bool, error) {
	slog.Debug("Command Quit")
	return true, nil
}
