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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fdfsclient/fileid"
)

func openLocalFile(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}

func fileExtOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

func newUploadCmd() *cobra.Command {
	var ext string

	cmd := &cobra.Command{
		Use:   "upload <local-file>",
		Short: "Upload a local file as a plain (non-appender) file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			f, size, err := openLocalFile(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if ext == "" {
				ext = fileExtOf(args[0])
			}

			id, uerr := c.Upload(context.Background(), ext, size, f, 0)
			if uerr != nil {
				return uerr
			}
			printSuccess("uploaded: %s", id.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "file extension hint, defaults to the local file's extension")
	return cmd
}

func newUploadAppenderCmd() *cobra.Command {
	var ext string

	cmd := &cobra.Command{
		Use:   "upload-appender <local-file>",
		Short: "Upload a local file as an appender file (can later accept append/modify/truncate)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			f, size, err := openLocalFile(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if ext == "" {
				ext = fileExtOf(args[0])
			}

			id, uerr := c.UploadAppender(context.Background(), ext, size, f, 0)
			if uerr != nil {
				return uerr
			}
			printSuccess("uploaded: %s", id.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "file extension hint, defaults to the local file's extension")
	return cmd
}

func newUploadSlaveCmd() *cobra.Command {
	var ext string

	cmd := &cobra.Command{
		Use:   "upload-slave <master-file-id> <prefix> <local-file>",
		Short: "Upload a local file as a slave of an existing master file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			master, perr := fileid.Parse(args[0])
			if perr != nil {
				return perr
			}

			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Close()

			f, size, err := openLocalFile(args[2])
			if err != nil {
				return err
			}
			defer f.Close()

			if ext == "" {
				ext = fileExtOf(args[2])
			}

			id, uerr := c.UploadSlave(context.Background(), master, args[1], ext, size, f, 0)
			if uerr != nil {
				return uerr
			}
			printSuccess("uploaded: %s", id.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "file extension hint, defaults to the local file's extension")
	return cmd
}
