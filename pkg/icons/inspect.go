// pkg/icons/inspect.go - reading icon image headers for reports.

package icons

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-git/go-billy/v5"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Info describes an icon file.
type Info struct {
	Path   string
	Bytes  int64
	Format string // empty when the image header is not recognized
	Width  int
	Height int
}

// Inspect stats path and decodes its image header. An undecodable image
// (Apple .icns, say) is not an error; Format is left empty.
func Inspect(fs billy.Filesystem, path string) (Info, error) {
	info := Info{Path: path}
	st, err := fs.Stat(path)
	if err != nil {
		return info, err
	}
	info.Bytes = st.Size()

	f, err := fs.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return info, nil
	}
	info.Format = format
	info.Width = cfg.Width
	info.Height = cfg.Height
	return info, nil
}
