/*
 * EM2200 - Console command options
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

package command

// Option given to a console command.
type CmdOption struct {
	Name  string // Name of option.
	Value uint64 // Numeric value.
}

// List of option types.
const (
	OptionSwitch = 1 + iota // Name only.
	OptionNumber            // Name=octal.
)

// Commands an option is valid for.
const (
	ValidResolve = 1 << iota
	ValidValidate
	ValidKey
	ValidDesignator
)

type Options struct {
	Name        string // Name of option.
	OptionType  int    // Type of argument.
	OptionValid int    // Option valid for command type.
	Limit       uint64 // Largest number allowed.
}

// Options understood by the addressing commands.
var AddressOptions = []Options{
	{Name: "read", OptionType: OptionSwitch, OptionValid: ValidResolve | ValidValidate},
	{Name: "write", OptionType: OptionSwitch, OptionValid: ValidResolve | ValidValidate},
	{Name: "enter", OptionType: OptionSwitch, OptionValid: ValidResolve | ValidValidate},
	{Name: "queue", OptionType: OptionSwitch, OptionValid: ValidResolve | ValidValidate},
	{Name: "qbr", OptionType: OptionSwitch, OptionValid: ValidValidate},
	{Name: "translate", OptionType: OptionSwitch, OptionValid: ValidValidate},
	{Name: "key", OptionType: OptionNumber, OptionValid: ValidValidate, Limit: 0777777},
	{Name: "ring", OptionType: OptionNumber, OptionValid: ValidKey, Limit: 3},
	{Name: "domain", OptionType: OptionNumber, OptionValid: ValidKey, Limit: 0177777},
	{Name: "privilege", OptionType: OptionNumber, OptionValid: ValidDesignator, Limit: 3},
	{Name: "basic", OptionType: OptionSwitch, OptionValid: ValidDesignator},
	{Name: "db31", OptionType: OptionSwitch, OptionValid: ValidDesignator},
}

// Processor state the show command formats.
var ShowItems = []string{"abt", "bd", "br", "key"}

// Find option by name for command type.
func Lookup(name string, cmdType int) (Options, bool) {
	for _, opt := range AddressOptions {
		if (opt.OptionValid&cmdType) != 0 && opt.Name == name {
			return opt, true
		}
	}
	return Options{}, false
}

// Names of options valid for command type.
func Names(cmdType int) []string {
	names := []string{}
	for _, opt := range AddressOptions {
		if (opt.OptionValid & cmdType) != 0 {
			names = append(names, opt.Name)
		}
	}
	return names
}
