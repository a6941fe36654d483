package kobo

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
)

const (
	containerPath = "META-INF/container.xml"
	opfMediaType  = "application/oebps-package+xml"
)

type container struct {
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// EPUBIdentifiers returns the ISBN/ASIN candidates listed in the package
// metadata of an EPUB file, in document order, without duplicates.
func EPUBIdentifiers(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, syncerrors.Wrapf(err, syncerrors.CodeNotFound, "Failed to open book file <i>%s</i>", path)
	}
	defer zr.Close()

	opfPath, err := rootfile(&zr.Reader)
	if err != nil {
		return nil, syncerrors.Wrapf(err, syncerrors.CodeNotFound, "Failed to read container manifest in <i>%s</i>", path)
	}

	f, err := zr.Open(opfPath)
	if err != nil {
		return nil, syncerrors.Wrapf(err, syncerrors.CodeNotFound, "Failed to read package file <i>%s</i> in <i>%s</i>", opfPath, path)
	}
	defer f.Close()

	ids, err := packageIdentifiers(f)
	if err != nil {
		return nil, syncerrors.Wrapf(err, syncerrors.CodeNotFound, "Failed to parse package file in <i>%s</i>", path)
	}
	return ids, nil
}

func rootfile(zr *zip.Reader) (string, error) {
	f, err := zr.Open(containerPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var c container
	if err := xml.NewDecoder(f).Decode(&c); err != nil {
		return "", err
	}
	for _, rf := range c.Rootfiles {
		if rf.MediaType == opfMediaType && rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", errors.New("no package rootfile")
}

// packageIdentifiers collects the identifier elements inside <metadata>.
// Parsing stops at the end of <metadata>.
func packageIdentifiers(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		ids          []string
		inMetadata   bool
		inIdentifier bool
		text         strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "metadata":
				inMetadata = true
			case "identifier":
				inIdentifier = inMetadata
				text.Reset()
			}
		case xml.CharData:
			if inIdentifier {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "metadata":
				return ids, nil
			case "identifier":
				if inIdentifier {
					if id := NormalizeIdentifier(text.String()); id != "" && !slices.Contains(ids, id) {
						ids = append(ids, id)
					}
				}
				inIdentifier = false
			}
		}
	}
}

// NormalizeIdentifier reduces an identifier such as "urn:isbn:978-0-00-000000-1"
// to its alphanumeric tail. Anything that is not 10 or 13 characters long
// cannot be an ISBN or ASIN and yields "".
func NormalizeIdentifier(raw string) string {
	s := norm.NFKC.String(strings.TrimSpace(raw))
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)

	if len(s) != 10 && len(s) != 13 {
		return ""
	}
	return s
}
