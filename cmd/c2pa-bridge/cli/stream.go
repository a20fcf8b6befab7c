// Copyright 2025 The C2PA Bridge Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/contentauth/c2pa-bridge/pkg/stream"
)

// Stream groups commands that exercise byte sources.
func Stream() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Read assets through a chunked byte source.",
	}
	cmd.AddCommand(newStreamCat())
	return cmd
}

func newStreamCat() *cobra.Command {
	var (
		offset     int64
		length     int64
		bufferSize int
	)

	long := `Copy part of FILE to stdout through a stream cursor.

    The file is opened as a chunked source and read with reads of at most
    --buffer-size bytes, the way a manifest engine pulls asset bytes. A
    negative --offset is taken from the end of the file.`

	cmd := &cobra.Command{
		Use:   "cat [OPTIONS] FILE",
		Short: "Copy a byte range of FILE to stdout.",
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bufferSize <= 0 {
				return fmt.Errorf("--buffer-size must be positive")
			}

			src, err := stream.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			cur := stream.NewCursor(src)
			whence := io.SeekStart
			if offset < 0 {
				whence = io.SeekEnd
			}
			if _, err := cur.Seek(offset, whence); err != nil {
				return err
			}

			var r io.Reader = cur
			if length >= 0 {
				r = io.LimitReader(cur, length)
			}

			// Hide ReaderFrom so the copy goes through our buffer.
			w := struct{ io.Writer }{cmd.OutOrStdout()}
			n, err := io.CopyBuffer(w, r, make([]byte, bufferSize))
			logger().Debug("copied %d bytes from offset %d of %s", n, cur.Offset()-n, args[0])
			return err
		},
	}

	cmd.Flags().Int64Var(&offset, "offset", 0, "Start position; negative counts from the end.")
	cmd.Flags().Int64Var(&length, "length", -1, "Bytes to copy; -1 copies to the end.")
	cmd.Flags().IntVar(&bufferSize, "buffer-size", 64*1024, "Largest single read issued to the source.")
	return cmd
}
