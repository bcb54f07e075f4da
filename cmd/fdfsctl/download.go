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
	"os"

	"github.com/spf13/cobra"

	"fdfsclient/fileid"
)

func newDownloadCmd() *cobra.Command {
	var offset, length int64

	cmd := &cobra.Command{
		Use:   "download <file-id> <local-file>",
		Short: "Download a remote file to a local path",
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

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer out.Close()

			if derr := c.Download(context.Background(), id, offset, length, out, 0); derr != nil {
				return derr
			}
			printSuccess("downloaded: %s -> %s", id.String(), args[1])
			return nil
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "byte offset to start reading from")
	cmd.Flags().Int64Var(&length, "length", 0, "number of bytes to read, 0 means to end of file")
	return cmd
}
