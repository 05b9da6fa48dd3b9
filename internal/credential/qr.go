package credential

import qrcode "github.com/skip2/go-qrcode"

// QRSize is the pixel width/height of rendered credential QR codes.
const QRSize = 256

// RenderQR rasterizes an encoded payload into a PNG QR image.  Medium
// error correction matches what handheld scanners at the exit cope with
// on crumpled receipts.
func RenderQR(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, QRSize)
}
