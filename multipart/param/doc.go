// Package param provides a forgiving parser for parameterized header values,
// such as the Content-type of a multipart/related DICOMweb message:
//
//	multipart/related; type="application/dicom"; boundary=abcDEF
//
// Unlike mime.ParseMediaType, the parser here never fails. It splits the value
// into comma-separated groups (honoring double quotes), each group into
// semicolon-separated parameters, and keeps whatever it can make sense of.
// Malformed input degrades to "no match" rather than an error, which lets the
// caller treat a missing parameter as the normal case that it usually is.
package param
