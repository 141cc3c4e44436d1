package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zostay/go-dicomweb/multipart"
	"github.com/zostay/go-dicomweb/multipart/payload"
)

var (
	packCmd = &cobra.Command{
		Use:   "pack [<file|->...]",
		Short: "Encode files as the parts of a multipart/related message",
		Args:  cobra.ArbitraryArgs,
		RunE:  RunPack,
	}

	packBoundary  string
	packType      string
	packLocations []string
	packNoHint    bool
)

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().StringVarP(&packBoundary, "boundary", "b", "", "the boundary to use (random if not set)")
	packCmd.Flags().StringVarP(&packType, "type", "t", "application/dicom", "the Content-Type of every part")
	packCmd.Flags().StringArrayVarP(&packLocations, "location", "l", nil, "Content-Location of the part in the same position (repeatable)")
	packCmd.Flags().BoolVar(&packNoHint, "no-encoding-hint", false, "omit Content-Encoding on parts of unknown length")
}

// RunPack writes the message to the output and its outer headers to the error
// output. A file named "-" is read from the input only once the encoder gets
// to it, so its length is unknown.
func RunPack(cmd *cobra.Command, args []string) error {
	if len(packLocations) > len(args) {
		return fmt.Errorf("%d locations given for %d files", len(packLocations), len(args))
	}

	var opts []multipart.EncoderOption
	if packBoundary != "" {
		opts = append(opts, multipart.WithBoundary(packBoundary))
	}
	if packNoHint {
		opts = append(opts, multipart.WithoutContentEncodingHint())
	}

	enc, err := multipart.NewEncoder(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = enc.Close() }()

	for i, path := range args {
		p, err := packPayload(cmd, path)
		if err != nil {
			return err
		}

		var partOpts []multipart.PartOption
		if i < len(packLocations) {
			partOpts = append(partOpts, multipart.WithContentLocation(packLocations[i]))
		}

		op, err := multipart.NewOutgoingPart(packType, p, partOpts...)
		if err != nil {
			return err
		}

		if err := enc.Add(op); err != nil {
			return err
		}
	}

	cmd.PrintErrf("Content-Type: %s\n", enc.ContentType(packType))
	if n := enc.ContentLength(); n >= 0 {
		cmd.PrintErrf("Content-Length: %d\n", n)
	}

	_, err = enc.WriteTo(cmd.OutOrStdout())
	return err
}

func packPayload(cmd *cobra.Command, path string) (payload.Payload, error) {
	if path != "-" {
		return payload.FromFile(path)
	}

	return payload.Lazy(func() ([]byte, error) {
		return io.ReadAll(cmd.InOrStdin())
	})
}
