/*
 * EM2200 - Console command parser
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
	"io"
	"os"
	"strings"
	"unicode"

	command "github.com/rcornwell/EM2200/command/command"
	"github.com/rcornwell/EM2200/emu/address"
	core "github.com/rcornwell/EM2200/emu/core"
	"github.com/rcornwell/EM2200/util/octal"
)

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Process  func(*cmdLine, *core.Core) (bool, error)
	Complete func(*cmdLine) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

// Where command output goes.
var out io.Writer = os.Stdout

// Processor commands are sent to.
var currentCPU int

// Execute the command line given.
func ProcessCommand(commandLine string, core *core.Core) (bool, error) {
	line := cmdLine{line: commandLine}
	command := line.getWord(false)
	if command == "" {
		if !line.isEOL() {
			return false, errors.New("command must start with a name")
		}
		return false, nil
	}

	match := matchList(command)
	if len(match) == 0 {
		return false, errors.New("command not found: " + command)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + command)
	}

	return match[0].Process(&line, core)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	if len(command) > len(match.Name) {
		return false
	}
	return strings.HasPrefix(match.Name, command) && len(command) >= match.Min
}

// Check if command matches one of the commands.
func matchList(command string) []cmd {
	// If command empty just return.
	if command == "" {
		return []cmd{}
	}

	// Try and match one command.
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, command) {
			match = append(match, m)
		}
	}
	return match
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

// Check if at end of line.
func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// Return current character and advance to next.
func (line *cmdLine) getCurrent() byte {
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	line.pos++
	return by
}

// Return text up to next space.
func (line *cmdLine) getToken() string {
	line.skipSpace()
	start := line.pos
	for !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	return line.line[start:line.pos]
}

// Parse a word of letters and digits starting with a letter. Stops at
// = when equal is set.
func (line *cmdLine) getWord(equal bool) string {
	line.skipSpace()

	pos := line.pos
	value := ""
	for !line.isEOL() {
		by := line.line[line.pos]
		if unicode.IsSpace(rune(by)) || (by == '=' && equal) {
			break
		}
		if !unicode.IsLetter(rune(by)) && (value == "" || !unicode.IsDigit(rune(by))) {
			line.pos = pos
			return ""
		}
		value += string(by)
		line.pos++
	}
	return strings.ToLower(value)
}

// Parse octal number no larger than limit.
func (line *cmdLine) getOctal(limit uint64) (uint64, error) {
	pos := line.pos
	token := line.getToken()
	if token == "" {
		return 0, errors.New("number required")
	}
	value, err := octal.Parse(token, limit)
	if err != nil {
		line.pos = pos
		return 0, err
	}
	return value, nil
}

// Split a:b:c or a,b,c into three octal fields.
func splitAddress(token string) ([]string, bool) {
	fields := strings.FieldsFunc(token, func(r rune) bool {
		return r == ':' || r == ','
	})
	return fields, len(fields) == 3 && strings.ContainsAny(token, ":,")
}

// Parse virtual address, either L:BDI:OFFSET or a 36 bit word.
func (line *cmdLine) getVirtual() (address.VirtualAddress, error) {
	token := line.getToken()
	if token == "" {
		return address.VirtualAddress{}, errors.New("virtual address required")
	}
	fields, ok := splitAddress(token)
	if !ok {
		word, err := octal.ParseWord(token)
		if err != nil {
			return address.VirtualAddress{}, fmt.Errorf("invalid virtual address: %s", token)
		}
		return address.NewVirtualAddress(word), nil
	}
	level, err := octal.Parse(fields[0], address.LevelMask)
	if err != nil {
		return address.VirtualAddress{}, fmt.Errorf("invalid level: %s", fields[0])
	}
	bdi, err := octal.Parse(fields[1], address.BDIMask)
	if err != nil {
		return address.VirtualAddress{}, fmt.Errorf("invalid BDI: %s", fields[1])
	}
	offset, err := octal.Parse(fields[2], address.OffsetMask)
	if err != nil {
		return address.VirtualAddress{}, fmt.Errorf("invalid offset: %s", fields[2])
	}
	return address.VirtualAddress{Level: uint8(level), BDI: uint16(bdi), Offset: uint32(offset)}, nil
}

// Parse absolute address UPI:SEGMENT:OFFSET.
func (line *cmdLine) getAbsolute() (address.AbsoluteAddress, error) {
	token := line.getToken()
	fields, ok := splitAddress(token)
	if !ok {
		return address.AbsoluteAddress{}, fmt.Errorf("absolute address must be upi:segment:offset: %s", token)
	}
	upi, err := octal.Parse(fields[0], address.MaxUPI)
	if err != nil {
		return address.AbsoluteAddress{}, fmt.Errorf("invalid UPI: %s", fields[0])
	}
	seg, err := octal.Parse(fields[1], address.SegmentMask)
	if err != nil {
		return address.AbsoluteAddress{}, fmt.Errorf("invalid segment: %s", fields[1])
	}
	offset, err := octal.Parse(fields[2], 0xffffffff)
	if err != nil {
		return address.AbsoluteAddress{}, fmt.Errorf("invalid offset: %s", fields[2])
	}
	return address.AbsoluteAddress{UPI: uint8(upi), Segment: uint32(seg), Offset: uint32(offset)}, nil
}

// Get an option.
func (line *cmdLine) getOption(cmdType int) (*command.CmdOption, error) {
	// Get a word, stoping at equal or space.
	name := line.getWord(true)
	if name == "" {
		return nil, fmt.Errorf("invalid option: %s", line.getToken())
	}
	opt := command.CmdOption{Name: name}

	match, ok := command.Lookup(name, cmdType)
	if !ok {
		return nil, errors.New("unknown option: " + name)
	}
	by := line.getCurrent()
	switch match.OptionType {
	case command.OptionSwitch:
		if by != 0 && !unicode.IsSpace(rune(by)) {
			return nil, errors.New("switch option can't have arguments: " + name)
		}
	case command.OptionNumber:
		if by != '=' {
			return nil, errors.New("number options must be followed by number: " + name)
		}
		num, err := line.getOctal(match.Limit)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		opt.Value = num
	default:
		return nil, errors.New("invalid option type: " + name)
	}
	return &opt, nil
}

// Scan options to end of line.
func (line *cmdLine) getOptions(cmdType int) ([]*command.CmdOption, error) {
	optlist := []*command.CmdOption{}
	for {
		line.skipSpace()
		if line.isEOL() {
			return optlist, nil
		}
		opt, err := line.getOption(cmdType)
		if err != nil {
			return optlist, err
		}
		optlist = append(optlist, opt)
	}
}

// Make sure nothing follows command.
func (line *cmdLine) checkEOL() error {
	line.skipSpace()
	if !line.isEOL() {
		return errors.New("unexpected text: " + line.line[line.pos:])
	}
	return nil
}
