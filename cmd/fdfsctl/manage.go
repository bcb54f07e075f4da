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
	"strconv"

	"github.com/spf13/cobra"

	"fdfsclient/fileid"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a remote file",
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

			if derr := c.Delete(context.Background(), id); derr != nil {
				return derr
			}
			printSuccess("deleted: %s", id.String())
			return nil
		},
	}
}

func newAppendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "append <file-id> <local-file>",
		Short: "Append a local file's contents to an appender file",
		Args:  cobra.ExactArgs(2),
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

			f, size, err := openLocalFile(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			if aerr := c.Append(context.Background(), id, size, f, 0); aerr != nil {
				return aerr
			}
			printSuccess("appended: %s", id.String())
			return nil
		},
	}
}

func newModifyCmd() *cobra.Command {
	var offset int64

	cmd := &cobra.Command{
		Use:   "modify <file-id> <local-file>",
		Short: "Overwrite a range of an appender file with a local file's contents",
		Args:  cobra.ExactArgs(2),
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

			f, size, err := openLocalFile(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			if merr := c.Modify(context.Background(), id, offset, size, f, 0); merr != nil {
				return merr
			}
			printSuccess("modified: %s", id.String())
			return nil
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "byte offset to start overwriting at")
	return cmd
}

func newTruncateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "truncate <file-id> <target-size>",
		Short: "Shrink or extend an appender file to an exact size",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, perr := fileid.Parse(args[0])
			if perr != nil {
				return perr
			}
			size, serr := strconv.ParseInt(args[1], 10, 64)
			if serr != nil {
				return serr
			}

			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			if terr := c.Truncate(context.Background(), id, size); terr != nil {
				return terr
			}
			printSuccess("truncated: %s -> %d bytes", id.String(), size)
			return nil
		},
	}
}
