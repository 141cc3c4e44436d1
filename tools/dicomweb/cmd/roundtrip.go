package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/go-dicomweb/multipart"
	"github.com/zostay/go-dicomweb/multipart/payload"
)

// ErrRoundTripDiffers is returned by roundtrip --strict when re-encoding
// changes the message.
var ErrRoundTripDiffers = errors.New("re-encoded message differs from the original")

// defaultPartType stands in for a part that arrived without a Content-Type.
const defaultPartType = "application/octet-stream"

var (
	roundtripCmd = &cobra.Command{
		Use:   "roundtrip <file|->",
		Short: "Shows the diff of a single message decoded and encoded again",
		Args:  cobra.ExactArgs(1),
		RunE:  RunRoundtrip,
	}

	roundtripContentType string
	roundtripMediaType   string
	roundtripStrict      bool
)

func init() {
	rootCmd.AddCommand(roundtripCmd)

	roundtripCmd.Flags().StringVarP(&roundtripContentType, "content-type", "c", "", "the Content-Type header of the message")
	roundtripCmd.Flags().StringVar(&roundtripMediaType, "media-type", multipart.MultipartRelated, "the media type the Content-Type must name")
	roundtripCmd.Flags().BoolVar(&roundtripStrict, "strict", false, "fail if the message does not survive unchanged")
	_ = roundtripCmd.MarkFlagRequired("content-type")
}

// RunRoundtrip holds the whole message in memory, so it is meant for test
// fixtures rather than large studies.
func RunRoundtrip(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}

	orig, err := io.ReadAll(in)
	_ = in.Close()
	if err != nil {
		return err
	}

	again, err := reencode(cmd, orig)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	patch, same := diffMessages(orig, again)
	if same {
		_, err = fmt.Fprintln(out, "round trip is identical")
		return err
	}

	if _, err := fmt.Fprint(out, patch); err != nil {
		return err
	}

	if roundtripStrict {
		return ErrRoundTripDiffers
	}
	return nil
}

// diffMessages compares a and b byte for byte. When they differ it returns a
// patch between quoted views of the two, so binary bodies stay readable and
// bytes that are not valid UTF-8 still show up as changes.
func diffMessages(a, b []byte) (string, bool) {
	if bytes.Equal(a, b) {
		return "", true
	}

	qa, qb := quoteLines(a), quoteLines(b)
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(qa, qb, false)
	return dmp.PatchToText(dmp.PatchMake(qa, diffs)), false
}

// quoteLines renders b as Go-quoted lines, split after each line feed.
func quoteLines(b []byte) string {
	var sb strings.Builder
	for len(b) > 0 {
		line := b
		if ix := bytes.IndexByte(b, '\n'); ix >= 0 {
			line = b[:ix+1]
		}
		b = b[len(line):]

		sb.WriteString(strconv.Quote(string(line)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// reencode decodes msg and encodes its parts again with the same boundary.
func reencode(cmd *cobra.Command, msg []byte) ([]byte, error) {
	r, err := multipart.NewReaderFromContentType(bytes.NewReader(msg), roundtripContentType, roundtripMediaType, readerOptions()...)
	if err != nil {
		return nil, err
	}

	enc, err := multipart.NewEncoder(multipart.WithBoundary(string(r.Boundary())))
	if err != nil {
		return nil, fmt.Errorf("boundary cannot be used for encoding: %w", err)
	}

	err = r.Walk(func(i int, part *multipart.Part) error {
		body, err := io.ReadAll(part)
		if err != nil {
			return err
		}

		ct := part.ContentType()
		if ct == "" {
			cmd.PrintErrf("part %d has no Content-Type, using %s\n", i, defaultPartType)
			ct = defaultPartType
		}

		var opts []multipart.PartOption
		if loc := part.ContentLocation(); loc != "" {
			opts = append(opts, multipart.WithContentLocation(loc))
		}

		op, err := multipart.NewOutgoingPart(ct, payload.FromBytes(body), opts...)
		if err != nil {
			return err
		}
		return enc.Add(op)
	})
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if _, err := enc.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
