package service

// QRCodeService renders a share link as a PNG so another device can scan it.
type QRCodeService interface {
	GenerateLinkQR(link string) ([]byte, error)
}
