/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"fdfsclient/fileid"
	"fdfsclient/wire"
)

func newGetMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-metadata <file-id>",
		Short: "Print the key/value metadata attached to a remote file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, perr := fileid.Parse(args[0])
			if perr != nil {
				return perr
			}

			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			md, merr := c.GetMetadata(context.Background(), id)
			if merr != nil {
				return merr
			}

			keys := make([]string, 0, len(md))
			for k := range md {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s=%s\n", k, md[k])
			}
			return nil
		},
	}
}

func newSetMetadataCmd() *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "set-metadata <file-id> <key=value>...",
		Short: "Attach or replace key/value metadata on a remote file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, perr := fileid.Parse(args[0])
			if perr != nil {
				return perr
			}

			md := make(wire.Metadata, len(args)-1)
			for _, pair := range args[1:] {
				k, v, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("invalid key=value pair: %q", pair)
				}
				md[k] = v
			}

			flag := wire.MetadataFlagOverwrite
			if merge {
				flag = wire.MetadataFlagMerge
			}

			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			if serr := c.SetMetadata(context.Background(), id, flag, md); serr != nil {
				return serr
			}
			printSuccess("metadata set: %s", id.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "merge into existing metadata instead of overwriting it")
	return cmd
}
