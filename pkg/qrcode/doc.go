// Package qrcode renders QR code images, either as raw PNG bytes or as a
// data-URI string. Its main consumer is the second-factor enrollment flow,
// which encodes otpauth provisioning URIs for authenticator apps to scan.
//
// The package is a thin wrapper around github.com/skip2/go-qrcode adding
// input validation, a sensible default size, and the data-URI convenience:
//
//	img, err := qrcode.Generate(material.URI, 256)   // PNG bytes
//	src, err := qrcode.DataURI(material.URI, 256)    // for an <img> tag
//
// Sentinel errors (ErrEmptyContent, ErrFailedToGenerateQRCode) are declared
// at package level for errors.Is comparisons.
package qrcode
