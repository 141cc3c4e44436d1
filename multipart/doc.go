// Package multipart reads and writes the multipart/related messages that
// DICOMweb services use to move DICOM instances, bulk data, and metadata over
// HTTP.
//
// Both directions stream. The Reader never holds more than a fixed window of
// the input (see WithBufferSize), however large the parts are, and the Encoder
// does not touch a part's payload until the reader of the encoded stream gets
// to it.
//
// Decoding looks like this:
//
//	r, err := multipart.NewReaderFromContentType(resp.Body, resp.Header.Get("Content-Type"), multipart.MultipartRelated)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	err = r.Walk(func(i int, part *multipart.Part) error {
//		_, err := io.Copy(dst[i], part)
//		return err
//	})
//
// A part does not have to be read to the end. Whatever the caller leaves
// behind is drained when the part is closed, or when the Reader moves to the
// next part, so the Reader always stays in step with the framing.
//
// Encoding looks like this:
//
//	enc, err := multipart.NewEncoder()
//	if err != nil {
//		return err
//	}
//
//	part, err := multipart.NewOutgoingPart("application/dicom", payload.FromBytes(instance))
//	if err != nil {
//		return err
//	}
//	_ = enc.Add(part)
//
//	req, err := http.NewRequest(http.MethodPost, url, enc)
//	req.Header.Set("Content-Type", enc.ContentType("application/dicom"))
//
// Every part carries a Content-Type. A part whose size is known gets a
// Content-Length, which the Reader verifies on the way back in.
package multipart
