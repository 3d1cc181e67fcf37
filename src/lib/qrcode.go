package lib

import (
	"log"

	"github.com/yeqown/go-qrcode"
)

// SaveQRCode renders content as a QR code image at filePath.
func SaveQRCode(content string, filePath string) error {
	qrc, err := qrcode.New(content)
	if err != nil {
		log.Printf("Error creating qrcode: %s\n", err.Error())
		return err
	}
	if err := qrc.Save(filePath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filePath, err.Error())
		return err
	}
	return nil
}
