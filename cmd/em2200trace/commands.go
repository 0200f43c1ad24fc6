/*
 * EM2200 - Resolution trace inspection commands
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

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rcornwell/EM2200/util/trace"
	"github.com/spf13/cobra"
)

// Root command, list and summary read the database named by --file.
func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "em2200trace",
		Short: "Inspect EM2200 address resolution trace databases.",
		Long: `em2200trace reads the SQLite database written when the ` +
			`configuration contains a TRACE line.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("file", "f", "", "trace database to read")
	_ = rootCmd.MarkPersistentFlagRequired("file")
	rootCmd.SetOut(out)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List traced operations in order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, _ := cmd.Flags().GetString("operation")
			limit, _ := cmd.Flags().GetInt("limit")
			return withStore(cmd, func(s *trace.Store) error {
				return list(cmd.OutOrStdout(), s, op, limit)
			})
		},
	}
	listCmd.Flags().StringP("operation", "o", "", "only list this operation")
	listCmd.Flags().IntP("limit", "n", 0, "list at most this many entries")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Count traced operations by outcome.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(s *trace.Store) error {
				return summary(cmd.OutOrStdout(), s)
			})
		},
	}

	rootCmd.AddCommand(listCmd, summaryCmd)
	return rootCmd
}

func withStore(cmd *cobra.Command, fn func(*trace.Store) error) error {
	fileName, _ := cmd.Flags().GetString("file")
	s, err := trace.Open(fileName)
	if err != nil {
		return err
	}
	err = fn(s)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

func list(out io.Writer, s *trace.Store, op string, limit int) error {
	entries, err := s.Entries(op, limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 8, 1, ' ', 0)
	fmt.Fprintln(w, "SEQ\tCPU\tOP\tADDRESS\tTARGET\tSTATUS\tREAL\tFAULT")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n", e.Sequence, e.Processor,
			e.Operation, e.Address, e.Target, e.Status, e.Real, e.Fault)
	}
	return w.Flush()
}

func summary(out io.Writer, s *trace.Store) error {
	counts, err := s.Summary()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 8, 1, ' ', 0)
	fmt.Fprintln(w, "OP\tOUTCOME\tCOUNT")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%s\t%d\n", c.Operation, c.Status, c.Count)
	}
	return w.Flush()
}
