package epubtext

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// encryptionFilePath is the standard path for the encryption descriptor.
const encryptionFilePath = "META-INF/encryption.xml"

// sinfFilePath is the path that indicates Apple FairPlay DRM.
const sinfFilePath = "META-INF/sinf.xml"

// maxEncryptionSize bounds how much of encryption.xml is read.
const maxEncryptionSize int64 = 4 * 1024 * 1024

// Font obfuscation algorithm URIs. These do NOT constitute DRM.
var fontObfuscationAlgorithms = map[string]bool{
	"http://www.idpf.org/2008/embedding": true, // IDPF font obfuscation
	"http://ns.adobe.com/pdf/enc#RC":     true, // Adobe font obfuscation
}

type xmlEncryption struct {
	XMLName       xml.Name           `xml:"encryption"`
	EncryptedData []xmlEncryptedData `xml:"EncryptedData"`
}

type xmlEncryptedData struct {
	EncryptionMethod struct {
		Algorithm string `xml:"Algorithm,attr"`
	} `xml:"EncryptionMethod"`
	CipherReference struct {
		URI string `xml:"URI,attr"`
	} `xml:"CipherData>CipherReference"`
}

// checkDRM inspects META-INF/sinf.xml and META-INF/encryption.xml.
// It returns ErrDRMProtected when any resource is encrypted with something
// other than font obfuscation, and the URIs of obfuscated fonts otherwise.
// An unreadable or unparsable encryption.xml is treated as DRM.
func checkDRM(zr *zip.Reader) (obfuscated []string, err error) {
	if findFileInsensitive(zr, sinfFilePath) != nil {
		return nil, fmt.Errorf("epubtext: %s present: %w", sinfFilePath, ErrDRMProtected)
	}

	f := findFileInsensitive(zr, encryptionFilePath)
	if f == nil {
		return nil, nil
	}

	rc, err := openEntry(f, maxEncryptionSize)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("epubtext: read %s: %w", encryptionFilePath, err)
	}
	data = stripBOM(data)

	var enc xmlEncryption
	if err := xml.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("epubtext: parse %s: %w", encryptionFilePath, ErrDRMProtected)
	}

	for _, ed := range enc.EncryptedData {
		algo := strings.TrimSpace(ed.EncryptionMethod.Algorithm)
		if !fontObfuscationAlgorithms[algo] {
			return nil, fmt.Errorf("epubtext: %s encrypted with %q: %w",
				ed.CipherReference.URI, algo, ErrDRMProtected)
		}
		obfuscated = append(obfuscated, ed.CipherReference.URI)
	}
	return obfuscated, nil
}
