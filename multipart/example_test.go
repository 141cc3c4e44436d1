package multipart_test

import (
	"fmt"
	"io"
	"strings"

	"github.com/zostay/go-dicomweb/multipart"
	"github.com/zostay/go-dicomweb/multipart/payload"
)

func ExampleEncoder() {
	enc, err := multipart.NewEncoder(multipart.WithBoundary("XYZ"))
	if err != nil {
		panic(err)
	}

	part, err := multipart.NewOutgoingPart("application/dicom+json",
		payload.FromString(`[]`),
		multipart.WithContentLocation("/studies/1/metadata"))
	if err != nil {
		panic(err)
	}
	_ = enc.Add(part)

	fmt.Println(enc.ContentType("application/dicom+json"))
	fmt.Println(enc.ContentLength())

	buf := &strings.Builder{}
	_, _ = enc.WriteTo(buf)
	fmt.Println(strings.ReplaceAll(buf.String(), "\r\n", "\n"))

	// Output:
	// multipart/related; type="application/dicom+json"; boundary=XYZ
	// 118
	//
	// --XYZ
	// Content-Type: application/dicom+json
	// Content-Length: 2
	// Content-Location: /studies/1/metadata
	//
	// []
	// --XYZ--
}

func ExampleReader_Walk() {
	msg := "--XYZ\r\n" +
		"Content-Type: application/dicom\r\n" +
		"Content-Location: /studies/1/series/2/instances/3\r\n" +
		"\r\n" +
		"DICM...\r\n" +
		"--XYZ\r\n" +
		"Content-Type: application/dicom\r\n" +
		"Content-Location: /studies/1/series/2/instances/4\r\n" +
		"\r\n" +
		"DICM......\r\n" +
		"--XYZ--"

	r, err := multipart.NewReaderFromContentType(strings.NewReader(msg),
		`multipart/related; type="application/dicom"; boundary=XYZ`,
		multipart.MultipartRelated)
	if err != nil {
		panic(err)
	}
	defer r.Close()

	err = r.Walk(func(i int, part *multipart.Part) error {
		n, err := io.Copy(io.Discard, part)
		fmt.Printf("%d: %s %s (%d bytes)\n", i, part.ContentType(), part.ContentLocation(), n)
		return err
	})
	if err != nil {
		panic(err)
	}

	// Output:
	// 0: application/dicom /studies/1/series/2/instances/3 (7 bytes)
	// 1: application/dicom /studies/1/series/2/instances/4 (10 bytes)
}
