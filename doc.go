// Package dicomweb is the root of a set of packages for moving DICOM data over
// HTTP the way DICOMweb services (STOW-RS, WADO-RS) do it: as
// multipart/related messages whose parts are DICOM instances, bulk data, or
// metadata.
//
// The work is done by the multipart package, which streams in both
// directions. Decoding goes through multipart.Reader, which keeps only a fixed
// window of the input in memory and hands out each part as a bounded
// io.Reader. Encoding goes through multipart.Encoder, which is itself an
// io.Reader and does not open a part's payload until it is reached, so a
// message of any size can be posted without assembling it first.
//
// Supporting packages:
//
//   - multipart/param parses parameterized header values such as the outer
//     Content-Type and finds the boundary in them.
//   - multipart/header parses the header block of each part.
//   - multipart/charset decodes header blocks written in a charset other than
//     UTF-8.
//   - multipart/payload provides the byte sources for outgoing parts: bytes in
//     memory, files, and payloads computed on demand.
//
// The tools/dicomweb command splits, packs, and round-trips messages from the
// command line.
package dicomweb
