package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-dicomweb/multipart"
)

var (
	rootCmd = &cobra.Command{
		Use:          "dicomweb",
		Short:        "Tools for taking apart and putting together DICOMweb multipart messages",
		SilenceUsage: true,
	}

	bufferSize    int
	maxHeaderSize int
	headerCharset string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&bufferSize, "buffer-size", multipart.DefaultBufferSize, "size of the decoder read-ahead window in bytes")
	pf.IntVar(&maxHeaderSize, "max-header-size", multipart.DefaultMaxHeaderSize, "largest part header block the decoder accepts")
	pf.StringVar(&headerCharset, "header-charset", "utf-8", "character set of part header blocks")
}

// Execute runs the dicomweb command.
func Execute() error {
	return rootCmd.Execute()
}

// readerOptions turns the decoder flags into options.
func readerOptions() []multipart.ReaderOption {
	return []multipart.ReaderOption{
		multipart.WithBufferSize(bufferSize),
		multipart.WithMaxHeaderSize(maxHeaderSize),
		multipart.WithHeaderCharset(headerCharset),
	}
}

// openInput opens the named file, or the command's input for "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}
