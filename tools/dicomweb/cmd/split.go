package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zostay/go-dicomweb/multipart"
)

var (
	splitCmd = &cobra.Command{
		Use:   "split <file|->",
		Short: "Write the body of each part of a message to its own file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunSplit,
	}

	splitContentType string
	splitMediaType   string
	splitOut         string
)

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringVarP(&splitContentType, "content-type", "c", "", "the Content-Type header of the message")
	splitCmd.Flags().StringVar(&splitMediaType, "media-type", multipart.MultipartRelated, "the media type the Content-Type must name")
	splitCmd.Flags().StringVarP(&splitOut, "out", "o", "", "directory to write part bodies into (bodies are discarded if not set)")
	_ = splitCmd.MarkFlagRequired("content-type")
}

// RunSplit decodes a message, writing each part body to a part-NNNN file and
// one line per part to the output: index, Content-Type, Content-Location,
// body length, and destination.
func RunSplit(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}

	r, err := multipart.NewReaderFromContentType(in, splitContentType, splitMediaType, readerOptions()...)
	if err != nil {
		_ = in.Close()
		return err
	}
	defer func() { _ = r.Close() }()

	if splitOut != "" {
		if err := os.MkdirAll(splitOut, 0o755); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	return r.Walk(func(i int, part *multipart.Part) error {
		dst, name, err := partDestination(i)
		if err != nil {
			return err
		}

		n, err := io.Copy(dst, part)
		if c, isCloser := dst.(io.Closer); isCloser {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}

		_, err = fmt.Fprintf(out, "%04d\t%s\t%s\t%d\t%s\n",
			i, orDash(part.ContentType()), orDash(part.ContentLocation()), n, name)
		return err
	})
}

func partDestination(i int) (io.Writer, string, error) {
	if splitOut == "" {
		return io.Discard, "-", nil
	}

	name := filepath.Join(splitOut, fmt.Sprintf("part-%04d", i))
	f, err := os.Create(name)
	if err != nil {
		return nil, "", err
	}
	return f, name, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
